package pipeline

import "sync"

// Response is the generated reply cached between the generation goroutine and
// the play-stage poll.
type Response struct {
	ID              string
	Turn            int
	Text            string
	SourceUtterance string
}

// ResponseCache is the single-slot holder decoupling the slow asynchronous
// generation call from the timer-driven playback trigger. It is armed once
// per turn; writes for any other turn are discarded so a late result from a
// torn-down turn can never leak into the next one.
type ResponseCache struct {
	mu        sync.Mutex
	armedTurn int
	resp      *Response
	err       error
}

// NewResponseCache returns an unarmed cache.
func NewResponseCache() *ResponseCache {
	return &ResponseCache{}
}

// Arm readies the slot for one turn, discarding any previous contents.
func (rc *ResponseCache) Arm(turn int) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.armedTurn = turn
	rc.resp = nil
	rc.err = nil
}

// Put stores the generated response when it belongs to the armed turn.
func (rc *ResponseCache) Put(resp Response) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	if resp.Turn != rc.armedTurn {
		return
	}
	r := resp
	rc.resp = &r
	rc.err = nil
}

// Fail records a generation failure for the armed turn.
func (rc *ResponseCache) Fail(turn int, err error) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	if turn != rc.armedTurn {
		return
	}
	rc.err = err
}

// Poll takes the response if present. ok=false with a nil error means the
// slot is still pending.
func (rc *ResponseCache) Poll() (Response, bool, error) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	if rc.err != nil {
		return Response{}, false, rc.err
	}
	if rc.resp == nil {
		return Response{}, false, nil
	}
	resp := *rc.resp
	rc.resp = nil
	return resp, true, nil
}

// Ready reports whether a response is waiting without consuming it.
func (rc *ResponseCache) Ready() bool {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.resp != nil
}

// Clear disarms the slot and discards any contents.
func (rc *ResponseCache) Clear() {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.armedTurn = 0
	rc.resp = nil
	rc.err = nil
}
