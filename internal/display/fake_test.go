package display

// fakeSession is a scripted Session for loop and drain tests.
type fakeSession struct {
	queue   []Event
	acquire func() (AcquireResult, *FrameTarget, error)
	onPump  func()

	pumps      int
	presents   int
	readies    int
	presentErr error

	ids []MonitorID
}

func (f *fakeSession) Pump() {
	f.pumps++
	if f.onPump != nil {
		f.onPump()
	}
}

func (f *fakeSession) push(ev Event) {
	f.queue = append(f.queue, ev)
}

func (f *fakeSession) NextEvent() (Event, bool) {
	if len(f.queue) == 0 {
		return nil, false
	}
	ev := f.queue[0]
	f.queue = f.queue[1:]
	return ev, true
}

func (f *fakeSession) AcquireFrame(MonitorID) (AcquireResult, *FrameTarget, error) {
	if f.acquire != nil {
		return f.acquire()
	}
	return AcquireNoBuffers, nil, nil
}

func (f *fakeSession) Present(MonitorID) error {
	f.presents++
	return f.presentErr
}

func (f *fakeSession) SendReady() error {
	f.readies++
	return nil
}

func (f *fakeSession) MonitorCount() int { return len(f.ids) }

func (f *fakeSession) MonitorID(i int) MonitorID {
	if i < 0 || i >= len(f.ids) {
		return ""
	}
	return f.ids[i]
}

// countRenderer records draw invocations and the scales they carried.
type countRenderer struct {
	draws  int
	scales []float64
}

func (r *countRenderer) Draw(_ *FrameTarget, scale float64) {
	r.draws++
	r.scales = append(r.scales, scale)
}

// spyEvent counts releases; the registry ignores it.
type spyEvent struct {
	released int
}

func (*spyEvent) isEvent() {}

func (e *spyEvent) Release() { e.released++ }
