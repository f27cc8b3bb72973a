package response

const (
	StatusOk    = "OK"
	StatusError = "Error"
)

type Response struct {
	Status string            `json:"status"`
	Data   any               `json:"data,omitempty"`
	Error  string            `json:"error,omitempty"`
	Errors map[string]string `json:"errors,omitempty"`
}

func Ok(data any) Response {
	return Response{
		Status: StatusOk,
		Data:   data,
	}
}

func Error(msg string) Response {
	return Response{
		Status: StatusError,
		Error:  msg,
	}
}

// FieldErrors reports a validation failure as a field-keyed error map.
func FieldErrors(msg string, fields map[string]string) Response {
	return Response{
		Status: StatusError,
		Error:  msg,
		Errors: fields,
	}
}
