package x11

import (
	"fmt"
	"log"
	"sync"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// ClientListHandler receives the result of diffing _NET_CLIENT_LIST.
type ClientListHandler interface {
	WindowAdded(windowID xproto.Window)
	WindowRemoved(windowID xproto.Window)
	WindowActivated(windowID xproto.Window)
	ScreenChanged()
}

// Watcher turns root-window property changes into lifecycle notifications.
// Callbacks run on the xevent.Main goroutine.
type Watcher struct {
	conn    *Connection
	handler ClientListHandler

	mu    sync.Mutex
	known map[xproto.Window]struct{}
}

// NewWatcher creates a watcher seeded with the current client list so that
// pre-existing windows are not reported as newly created.
func NewWatcher(conn *Connection, handler ClientListHandler) (*Watcher, error) {
	w := &Watcher{
		conn:    conn,
		handler: handler,
		known:   make(map[xproto.Window]struct{}),
	}

	clients, err := conn.ClientList()
	if err != nil {
		log.Printf("Warning: failed to read initial client list: %v", err)
	}
	for _, id := range clients {
		w.known[id] = struct{}{}
	}
	return w, nil
}

// Start selects the root events the watcher needs and connects the callbacks.
func (w *Watcher) Start() error {
	xu := w.conn.XUtil
	root := xwindow.New(xu, w.conn.Root)
	if err := root.Listen(xproto.EventMaskPropertyChange); err != nil {
		return fmt.Errorf("failed to listen on root window: %w", err)
	}

	xevent.PropertyNotifyFun(func(xu *xgbutil.XUtil, ev xevent.PropertyNotifyEvent) {
		name, err := xprop.AtomName(xu, ev.Atom)
		if err != nil {
			return
		}
		switch name {
		case "_NET_CLIENT_LIST":
			w.syncClientList()
		case "_NET_ACTIVE_WINDOW":
			if active, err := w.conn.GetActiveWindow(); err == nil && active != 0 {
				w.handler.WindowActivated(active)
			}
		}
	}).Connect(xu, w.conn.Root)

	if err := randr.Init(xu.Conn()); err != nil {
		log.Printf("Warning: randr unavailable, monitor hotplug disabled: %v", err)
		return nil
	}
	if err := randr.SelectInputChecked(xu.Conn(), w.conn.Root, randr.NotifyMaskScreenChange).Check(); err != nil {
		log.Printf("Warning: failed to select randr events: %v", err)
		return nil
	}
	xevent.HookFun(func(xu *xgbutil.XUtil, event interface{}) bool {
		if _, ok := event.(randr.ScreenChangeNotifyEvent); ok {
			w.handler.ScreenChanged()
		}
		return true
	}).Connect(xu)

	return nil
}

func (w *Watcher) syncClientList() {
	clients, err := w.conn.ClientList()
	if err != nil {
		log.Printf("Warning: failed to read client list: %v", err)
		return
	}

	current := make(map[xproto.Window]struct{}, len(clients))
	for _, id := range clients {
		current[id] = struct{}{}
	}

	w.mu.Lock()
	var added, removed []xproto.Window
	for id := range current {
		if _, ok := w.known[id]; !ok {
			added = append(added, id)
		}
	}
	for id := range w.known {
		if _, ok := current[id]; !ok {
			removed = append(removed, id)
		}
	}
	w.known = current
	w.mu.Unlock()

	for _, id := range removed {
		w.handler.WindowRemoved(id)
	}
	for _, id := range added {
		w.handler.WindowAdded(id)
	}
}
