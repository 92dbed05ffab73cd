package runs

import "errors"

var ErrNotFound = errors.New("not found")

const (
	ErrorCodeValidation = "VALIDATION_ERROR"
	ErrorCodeLLMTimeout = "LLM_TIMEOUT"
	ErrorCodeLLMParse   = "LLM_PARSE_ERROR"
	ErrorCodeStorage    = "STORAGE_ERROR"
	ErrorCodeInternal   = "INTERNAL_ERROR"
)
