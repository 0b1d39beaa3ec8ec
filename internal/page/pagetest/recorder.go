// Package pagetest provides recording page collaborators for controller tests.
package pagetest

import (
	"sync"

	"solveit/internal/page"
)

type Download struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Recorder implements page.Navigator, page.Notifier, page.Confirmer and
// page.Downloader and remembers every call.
type Recorder struct {
	mu          sync.Mutex
	Navigations []string
	Messages    []page.Message
	Prompts     []string
	Downloads   []Download
	Answer      bool
	DownloadErr error
}

func NewRecorder() *Recorder {
	return &Recorder{Answer: true}
}

func (r *Recorder) Navigate(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Navigations = append(r.Navigations, path)
}

func (r *Recorder) Notify(msg page.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Messages = append(r.Messages, msg)
}

func (r *Recorder) Confirm(prompt string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Prompts = append(r.Prompts, prompt)
	return r.Answer
}

func (r *Recorder) Download(filename, contentType string, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.DownloadErr != nil {
		return r.DownloadErr
	}
	r.Downloads = append(r.Downloads, Download{Filename: filename, ContentType: contentType, Data: data})
	return nil
}

// LastMessage returns the most recent message, or the zero Message.
func (r *Recorder) LastMessage() page.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Messages) == 0 {
		return page.Message{}
	}
	return r.Messages[len(r.Messages)-1]
}

func (r *Recorder) LastNavigation() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Navigations) == 0 {
		return ""
	}
	return r.Navigations[len(r.Navigations)-1]
}
