package transport

import (
	"container/list"
	"sync"
	"sync/atomic"

	"github.com/creditmesh/corenet/mcwire"
)

const (
	// outgoingQueueLen is the buffer size of the channel which houses
	// messages queued by callers outside the Link before the write
	// goroutine picks them up.
	outgoingQueueLen = 50
)

// outgoingMsg packages a message to be sent out on the wire, along with
// a buffered channel that's closed once the write completes — callers
// that need to know a message actually went out block on sentChan.
type outgoingMsg struct {
	msg      mcwire.Message
	sentChan chan struct{}
}

// Link runs the read/write pump for one Conn: a dedicated reader
// goroutine hands every inbound message to Handler, and a queue/write
// goroutine pair drains outbound sends without blocking callers on
// socket I/O. The three-goroutine split (queueHandler buffering into an
// unbounded list, writeHandler draining a small buffered channel) mirrors
// peer.go's queueHandler/writeHandler/readHandler so that a burst of
// QueueMessage calls from many callers never blocks on a slow socket.
type Link struct {
	conn Conn

	// Handler is invoked from the read goroutine for every inbound
	// message. It must not block for long — a slow Handler stalls
	// delivery of subsequent messages on this Link.
	Handler func(mcwire.Message)

	// OnClose, if set, is invoked once when a read or write error shuts
	// the Link down, with that error. It runs on the goroutine that hit
	// the error, before the other goroutines have exited; Stop does not
	// invoke it.
	OnClose func(error)

	sendQueue     chan outgoingMsg
	outgoingQueue chan outgoingMsg

	quit       chan struct{}
	wg         sync.WaitGroup
	disconnect int32
}

// NewLink wraps conn with the read/write pump. Callers must call Start
// before any message flows, and Stop to release the goroutines.
func NewLink(conn Conn, handler func(mcwire.Message)) *Link {
	return &Link{
		conn:          conn,
		Handler:       handler,
		sendQueue:     make(chan outgoingMsg, 1),
		outgoingQueue: make(chan outgoingMsg, outgoingQueueLen),
		quit:          make(chan struct{}),
	}
}

// Start launches the queue, write, and read goroutines.
func (l *Link) Start() {
	l.wg.Add(3)
	go l.queueHandler()
	go l.writeHandler()
	go l.readHandler()
}

// Stop signals the pump to wind down and blocks until all three
// goroutines have exited.
func (l *Link) Stop() error {
	if !atomic.CompareAndSwapInt32(&l.disconnect, 0, 1) {
		return nil
	}
	err := l.conn.Close()
	close(l.quit)
	l.wg.Wait()
	return err
}

// QueueMessage enqueues msg for sending without blocking on the socket.
// sentChan, if non-nil, is closed once the write actually completes (or
// the Link shuts down beforehand without sending it).
func (l *Link) QueueMessage(msg mcwire.Message, sentChan chan struct{}) {
	if atomic.LoadInt32(&l.disconnect) != 0 {
		if sentChan != nil {
			close(sentChan)
		}
		return
	}
	select {
	case l.outgoingQueue <- outgoingMsg{msg, sentChan}:
	case <-l.quit:
		if sentChan != nil {
			close(sentChan)
		}
	}
}

// SendMessage queues msg and blocks until it has been written.
func (l *Link) SendMessage(msg mcwire.Message) error {
	sentChan := make(chan struct{})
	l.QueueMessage(msg, sentChan)
	<-sentChan
	if atomic.LoadInt32(&l.disconnect) != 0 {
		return ErrLinkClosed
	}
	return nil
}

func (l *Link) readHandler() {
	defer func() {
		l.wg.Done()
		log.Tracef("readHandler for %v done", l.conn.RemoteAddr())
	}()

	for atomic.LoadInt32(&l.disconnect) == 0 {
		msg, err := l.conn.ReadMessage()
		if err != nil {
			log.Infof("unable to read message from %v: %v", l.conn.RemoteAddr(), err)
			l.shutdown(err)
			return
		}
		if l.Handler != nil {
			l.Handler(msg)
		}
	}
}

func (l *Link) writeHandler() {
	defer func() {
		l.wg.Done()
		log.Tracef("writeHandler for %v done", l.conn.RemoteAddr())
	}()

	for {
		select {
		case out := <-l.sendQueue:
			err := l.conn.WriteMessage(out.msg)
			if out.sentChan != nil {
				close(out.sentChan)
			}
			if err != nil {
				log.Errorf("unable to write message to %v: %v", l.conn.RemoteAddr(), err)
				l.shutdown(err)
				return
			}
		case <-l.quit:
			return
		}
	}
}

// queueHandler drains an unbounded pending list into the small buffered
// sendQueue, so a burst of QueueMessage calls never blocks on the
// writeHandler falling behind on socket I/O.
func (l *Link) queueHandler() {
	defer l.wg.Done()

	pending := list.New()
	for {
	drain:
		for {
			elem := pending.Front()
			if elem == nil {
				break
			}
			select {
			case l.sendQueue <- elem.Value.(outgoingMsg):
				pending.Remove(elem)
			case <-l.quit:
				return
			default:
				break drain
			}
		}

		select {
		case <-l.quit:
			return
		case msg := <-l.outgoingQueue:
			pending.PushBack(msg)
		}
	}
}

func (l *Link) shutdown(err error) {
	if !atomic.CompareAndSwapInt32(&l.disconnect, 0, 1) {
		return
	}
	l.conn.Close()
	close(l.quit)
	if l.OnClose != nil {
		l.OnClose(err)
	}
}
