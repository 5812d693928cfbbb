package notify

import "sync"

// Recorder keeps notifications in memory, in emission order.
type Recorder struct {
	mu      sync.Mutex
	entries []Notification
}

func (r *Recorder) Success(msg string) { r.add(LevelSuccess, msg) }
func (r *Recorder) Error(msg string)   { r.add(LevelError, msg) }

func (r *Recorder) add(level Level, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Notification{Level: level, Message: msg})
}

func (r *Recorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.Message)
	}
	return out
}

func (r *Recorder) Errors() []string {
	return r.byLevel(LevelError)
}

func (r *Recorder) Successes() []string {
	return r.byLevel(LevelSuccess)
}

func (r *Recorder) byLevel(level Level) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.entries {
		if e.Level == level {
			out = append(out, e.Message)
		}
	}
	return out
}
