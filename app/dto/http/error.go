package http

// APIError is the error type controllers and middleware return. The echo
// error handler renders it as the uniform failure envelope.
type APIError struct {
	StatusCode int
	Message    string
	Errs       []string
}

func (e *APIError) Error() string {
	return e.Message
}

func NewAPIError(statusCode int, message string, errs ...string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Message:    message,
		Errs:       errs,
	}
}

// ErrorEnvelope is the uniform body of every non-2xx response:
// {statusCode, success:false, message, errors[]}.
type ErrorEnvelope struct {
	StatusCode int      `json:"statusCode"`
	Success    bool     `json:"success"`
	Message    string   `json:"message"`
	Errors     []string `json:"errors"`
}

func NewErrorEnvelope(err *APIError) ErrorEnvelope {
	errs := err.Errs
	if errs == nil {
		errs = []string{}
	}
	return ErrorEnvelope{
		StatusCode: err.StatusCode,
		Success:    false,
		Message:    err.Message,
		Errors:     errs,
	}
}

// Envelope is the body of every successful response.
type Envelope struct {
	StatusCode int    `json:"statusCode"`
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	Data       any    `json:"data,omitempty"`
}

func NewEnvelope(statusCode int, message string, data any) Envelope {
	return Envelope{
		StatusCode: statusCode,
		Success:    true,
		Message:    message,
		Data:       data,
	}
}
