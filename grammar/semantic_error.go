package grammar

type SemanticError struct {
	message string
}

func newSemanticError(message string) *SemanticError {
	return &SemanticError{
		message: message,
	}
}

func (e *SemanticError) Error() string {
	return e.message
}

var (
	semErrUndefinedSym       = newSemanticError("undefined rule or token")
	semErrDuplicateRule      = newSemanticError("duplicate rule")
	semErrDirInvalidName     = newSemanticError("invalid directive name")
	semErrDirInvalidParam    = newSemanticError("invalid directive parameter")
	semErrInvalidSoftKeyword = newSemanticError("a soft keyword must be spelled like an identifier")
	semErrHardAndSoftKeyword = newSemanticError("a keyword cannot be declared both hard and soft")
)
