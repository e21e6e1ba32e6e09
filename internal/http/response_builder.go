package http

import (
	"encoding/json"
	"html/template"
	"maps"
	"net/http"
)

// Reply collects status, headers, HX-Trigger events and an HTML fragment
// for one htmx-aware response. Build it with chained calls and finish with
// Write.
type Reply struct {
	status  int
	header  http.Header
	events  map[string]any
	content []byte
}

func NewReply() *Reply {
	return &Reply{
		status: http.StatusOK,
		header: make(http.Header),
		events: make(map[string]any),
	}
}

func (r *Reply) Status(code int) *Reply {
	r.status = code
	return r
}

func (r *Reply) Header(name, value string) *Reply {
	r.header.Set(name, value)
	return r
}

// Redirect asks htmx to navigate the whole page to url.
func (r *Reply) Redirect(url string) *Reply {
	return r.Header("HX-Redirect", url)
}

// Trigger queues a client event; data becomes the event detail.
func (r *Reply) Trigger(event string, data any) *Reply {
	r.events[event] = data
	return r
}

// TriggerEntryCreated lets listeners such as the work log table reload.
func (r *Reply) TriggerEntryCreated(employee, date string) *Reply {
	return r.Trigger("entry:created", map[string]string{"employee": employee, "date": date})
}

func (r *Reply) TriggerFormReset() *Reply {
	return r.Trigger("form:reset", struct{}{})
}

// NotificationType is the toast style picked by app.js.
type NotificationType string

const (
	NotificationSuccess NotificationType = "success"
	NotificationError   NotificationType = "error"
	NotificationWarning NotificationType = "warning"
)

// TriggerNotification shows a toast for durationMs milliseconds.
func (r *Reply) TriggerNotification(kind NotificationType, message string, durationMs int) *Reply {
	return r.Trigger("show-notification", map[string]any{
		"type":     string(kind),
		"message":  message,
		"duration": durationMs,
	})
}

func (r *Reply) HTML(fragment string) *Reply {
	r.header.Set("Content-Type", "text/html; charset=utf-8")
	r.content = []byte(fragment)
	return r
}

// Message renders message escaped inside a div styled by kind.
func (r *Reply) Message(kind NotificationType, message string) *Reply {
	return r.HTML(`<div class="` + string(kind) + `">` + template.HTMLEscapeString(message) + `</div>`)
}

func (r *Reply) Write(w http.ResponseWriter) {
	maps.Copy(w.Header(), r.header)
	if len(r.events) > 0 {
		if payload, err := json.Marshal(r.events); err == nil {
			w.Header().Set("HX-Trigger", string(payload))
		}
	}
	w.WriteHeader(r.status)
	if len(r.content) > 0 {
		_, _ = w.Write(r.content)
	}
}

// ErrorResponse is an error notice with the given status.
func ErrorResponse(status int, message string) *Reply {
	return NewReply().Status(status).Message(NotificationError, message)
}

func BadRequestError(message string) *Reply {
	return ErrorResponse(http.StatusBadRequest, message)
}

func UnprocessableEntityError(message string) *Reply {
	return ErrorResponse(http.StatusUnprocessableEntity, message)
}

func InternalServerError(message string) *Reply {
	return ErrorResponse(http.StatusInternalServerError, message)
}

func NotFoundError(message string) *Reply {
	return ErrorResponse(http.StatusNotFound, message)
}
