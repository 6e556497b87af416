package studio

// Subscribe returns a channel of state snapshots and a function that ends
// the subscription. Slow subscribers miss events rather than block the
// session. The channel is closed when the session closes.
func (o *Orchestrator) Subscribe() (<-chan StateEvent, func()) {
	ch := make(chan StateEvent, subscriberBuffer)

	o.subMu.Lock()
	if o.subs == nil {
		o.subMu.Unlock()
		close(ch)
		return ch, func() {}
	}
	o.subs[ch] = struct{}{}
	o.subMu.Unlock()

	return ch, func() {
		o.subMu.Lock()
		if _, ok := o.subs[ch]; ok {
			delete(o.subs, ch)
			close(ch)
		}
		o.subMu.Unlock()
	}
}

func (o *Orchestrator) publish(reason string) {
	o.subMu.Lock()
	if len(o.subs) == 0 {
		o.subMu.Unlock()
		return
	}
	o.subMu.Unlock()

	event := StateEvent{Reason: reason, State: o.State()}

	o.subMu.Lock()
	defer o.subMu.Unlock()
	for ch := range o.subs {
		select {
		case ch <- event:
		default:
			o.logger.Debug("subscriber buffer full, dropping event", "reason", reason)
		}
	}
}

func (o *Orchestrator) closeSubscribers() {
	o.subMu.Lock()
	defer o.subMu.Unlock()
	for ch := range o.subs {
		close(ch)
	}
	o.subs = nil
}

func (o *Orchestrator) subscriberCount() int {
	o.subMu.Lock()
	defer o.subMu.Unlock()
	return len(o.subs)
}
