package resource

// ResponseType tells the presentation layer how loudly to surface a message.
type ResponseType int

const (
	ResponseNone ResponseType = iota
	ResponseToast
	ResponseDialog
)

func (t ResponseType) String() string {
	switch t {
	case ResponseToast:
		return "toast"
	case ResponseDialog:
		return "dialog"
	default:
		return "none"
	}
}

type Response struct {
	Message string
	Type    ResponseType
}

type Loading struct {
	IsLoading bool
}

type StateError struct {
	Response Response
}

type Data[V any] struct {
	Value    *V
	Response *Response
}

// DataState is the single envelope every operation emits: progress, a
// terminal error or terminal data.
type DataState[V any] struct {
	Loading Loading
	Error   *StateError
	Data    *Data[V]
}

func LoadingState[V any](isLoading bool, cached *V) DataState[V] {
	return DataState[V]{
		Loading: Loading{IsLoading: isLoading},
		Data:    &Data[V]{Value: cached},
	}
}

func DataStateOf[V any](value *V, response *Response) DataState[V] {
	return DataState[V]{
		Data: &Data[V]{Value: value, Response: response},
	}
}

func ErrorStateOf[V any](response Response) DataState[V] {
	return DataState[V]{
		Error: &StateError{Response: response},
	}
}

// IsTerminal reports whether the state ends a stream.
func (s DataState[V]) IsTerminal() bool {
	return !s.Loading.IsLoading
}

// Value returns the carried data or nil.
func (s DataState[V]) Value() *V {
	if s.Data == nil {
		return nil
	}
	return s.Data.Value
}

// Message returns the error or data response message, if any.
func (s DataState[V]) Message() (Response, bool) {
	switch {
	case s.Error != nil:
		return s.Error.Response, true
	case s.Data != nil && s.Data.Response != nil:
		return *s.Data.Response, true
	default:
		return Response{}, false
	}
}

// ErrorState is a finished stream carrying one error, for operations that
// fail before any coordinator is started (e.g. local validation).
func ErrorState[V any](message string, t ResponseType) <-chan DataState[V] {
	ch := make(chan DataState[V], 1)
	ch <- ErrorStateOf[V](Response{Message: message, Type: t})
	close(ch)
	return ch
}

// ReturnData is a finished stream carrying one data state.
func ReturnData[V any](value *V, response *Response) <-chan DataState[V] {
	ch := make(chan DataState[V], 1)
	ch <- DataStateOf(value, response)
	close(ch)
	return ch
}

// Final drains the stream and returns its last state.
func Final[V any](ch <-chan DataState[V]) DataState[V] {
	var last DataState[V]
	for s := range ch {
		last = s
	}
	return last
}
