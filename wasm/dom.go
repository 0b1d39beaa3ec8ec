//go:build js && wasm

package main

import (
	"syscall/js"

	"solveit/internal/page"
)

var (
	document = js.Global().Get("document")
	window   = js.Global().Get("window")
)

func byID(id string) js.Value {
	return document.Call("getElementById", id)
}

func present(v js.Value) bool {
	return !v.IsNull() && !v.IsUndefined()
}

// on attaches a listener that runs fn on its own goroutine. Handlers make
// HTTP calls, and blocking the JS event loop would deadlock the fetch they wait on.
func on(el js.Value, event string, preventDefault bool, fn func(event js.Value)) {
	if !present(el) {
		return
	}
	el.Call("addEventListener", event, js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		var ev js.Value
		if len(args) > 0 {
			ev = args[0]
			if preventDefault {
				ev.Call("preventDefault")
			}
		}
		go fn(ev)
		return nil
	}))
}

func value(id string) string {
	el := byID(id)
	if !present(el) {
		return ""
	}
	return el.Get("value").String()
}

func setValue(id, v string) {
	if el := byID(id); present(el) {
		el.Set("value", v)
	}
}

func setText(id, text string) {
	if el := byID(id); present(el) {
		el.Set("textContent", text)
	}
}

// formField reads a named field of a form the way FormData would.
func formField(form js.Value, name string) string {
	v := js.Global().Get("FormData").New(form).Call("get", name)
	if !present(v) {
		return ""
	}
	return v.String()
}

type locationNavigator struct{}

func (locationNavigator) Navigate(path string) {
	window.Get("location").Set("href", path)
}

type windowConfirmer struct{}

func (windowConfirmer) Confirm(prompt string) bool {
	return window.Call("confirm", prompt).Bool()
}

// blobDownloader saves a payload through a temporary object URL and anchor click.
type blobDownloader struct{}

func (blobDownloader) Download(filename, contentType string, data []byte) error {
	arr := js.Global().Get("Uint8Array").New(len(data))
	js.CopyBytesToJS(arr, data)
	blob := js.Global().Get("Blob").New([]interface{}{arr}, map[string]interface{}{"type": contentType})

	urlAPI := window.Get("URL")
	href := urlAPI.Call("createObjectURL", blob)
	a := document.Call("createElement", "a")
	a.Set("href", href)
	a.Set("download", filename)
	body := document.Get("body")
	body.Call("appendChild", a)
	a.Call("click")
	urlAPI.Call("revokeObjectURL", href)
	body.Call("removeChild", a)
	return nil
}

// messageDisplay inserts the board's message element into the page.
type messageDisplay struct {
	// place inserts el at the page's message position.
	place   func(el js.Value)
	classOf func(kind page.Kind) string
	current js.Value
}

func (d *messageDisplay) ShowMessage(msg page.Message) {
	el := document.Call("createElement", "div")
	el.Set("className", d.classOf(msg.Kind))
	el.Set("textContent", msg.Text)
	d.place(el)
	d.current = el
}

func (d *messageDisplay) ClearMessage() {
	if present(d.current) && d.current.Truthy() {
		d.current.Call("remove")
	}
	d.current = js.Undefined()
}

// sectionDisplay puts messages right after the heading of the section holding anchor,
// falling back to the given selector and then the body.
func sectionDisplay(anchor js.Value, fallbackSelector string) *messageDisplay {
	return &messageDisplay{
		place: func(el js.Value) {
			target := js.Null()
			if present(anchor) {
				target = anchor.Call("closest", "section")
			}
			if !present(target) {
				target = document.Call("querySelector", fallbackSelector)
			}
			if !present(target) {
				target = document.Get("body")
			}
			first := target.Get("firstChild")
			if present(first) {
				target.Call("insertBefore", el, first.Get("nextSibling"))
			} else {
				target.Call("appendChild", el)
			}
		},
		classOf: func(kind page.Kind) string {
			if kind == page.KindError {
				return "error-message"
			}
			return "success-message"
		},
	}
}

// alertDisplay puts messages above the auth form.
func alertDisplay() *messageDisplay {
	return &messageDisplay{
		place: func(el js.Value) {
			form := document.Call("querySelector", ".auth-form")
			if present(form) {
				form.Get("parentNode").Call("insertBefore", el, form)
			}
		},
		classOf: func(kind page.Kind) string {
			return "alert alert-" + string(kind)
		},
	}
}
