package audio

// Ring is a fixed-capacity FIFO buffer of audio samples. When a write
// exceeds the capacity the oldest samples are evicted first, so the ring
// always holds the most recent capacity samples of the stream.
//
// Ring is not safe for concurrent use; the owning session serializes
// access to it.
type Ring struct {
	buf   []float64
	head  int // index of the oldest sample
	count int
}

// NewRing creates a ring holding at most capacity samples.
func NewRing(capacity int) *Ring {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring{buf: make([]float64, capacity)}
}

// Write appends samples, evicting the oldest beyond capacity.
func (r *Ring) Write(samples []float64) {
	n := len(r.buf)

	// A write larger than the whole ring reduces to its tail.
	if len(samples) >= n {
		copy(r.buf, samples[len(samples)-n:])
		r.head = 0
		r.count = n
		return
	}

	tail := (r.head + r.count) % n
	for _, s := range samples {
		r.buf[tail] = s
		tail = (tail + 1) % n
		if r.count < n {
			r.count++
		} else {
			r.head = (r.head + 1) % n
		}
	}
}

// Window returns a copy of the current contents, oldest sample first.
func (r *Ring) Window() []float64 {
	out := make([]float64, r.count)
	for i := 0; i < r.count; i++ {
		out[i] = r.buf[(r.head+i)%len(r.buf)]
	}
	return out
}

// Len returns the number of samples currently held.
func (r *Ring) Len() int {
	return r.count
}

// Cap returns the ring capacity in samples.
func (r *Ring) Cap() int {
	return len(r.buf)
}
