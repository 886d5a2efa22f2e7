package rewrite

import "fmt"

func errSelectResidual(got interface{}) error {
	return fmt.Errorf("simplifyexpressions: internal error: dismantling a select expression did not produce a select residual (got %#v)", got)
}
