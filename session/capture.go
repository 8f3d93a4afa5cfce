package session

import (
	"time"

	"murmur/log"
)

func (c *Controller) consume(rec *recording) {
	defer close(rec.done)
	for data := range rec.chunks {
		if c.proc != nil {
			c.proc.Process(data)
		}
		if !rec.buf.Append(pcmToFloat32(data)) {
			log.Warn("recording cap reached, further audio discarded")
		}
	}
}

func (c *Controller) watchSilence(rec *recording) {
	mon := newSilenceMonitor(func() bool { return rec.toggle })
	t := time.NewTicker(tickInterval)
	defer t.Stop()
	for {
		select {
		case <-rec.quit:
			return
		case <-t.C:
			switch mon.Tick(c.proc.HasSpeechTick()) {
			case SilenceWarn:
				log.Warn("no speech detected")
			case SilenceRepeat:
				log.Warn("still no speech detected")
			case SilenceWarnClear:
				log.Info("speech resumed")
			case SilenceAutoClose:
				log.Warn("closing recording after prolonged silence")
				go c.Stop()
				return
			}
		}
	}
}
