package engine

import (
	"context"
	"log"
	"sync"
	"time"

	"orderdesk/assets"
	"orderdesk/config"
	"orderdesk/dashboard"
	"orderdesk/docstore"
	"orderdesk/messaging"
	"orderdesk/mirror"
	"orderdesk/store"
)

type LogFunc func(format string, args ...any)

type Config struct {
	AppConfig *config.Config
	DB        *store.DB
	DocStore  docstore.Backend
	Views     mirror.Store
	Assets    assets.Resolver
	MsgClient *messaging.Client
	LogFunc   LogFunc
}

type Engine struct {
	cfg       *config.Config
	db        *store.DB
	docStore  docstore.Backend
	assets    assets.Resolver
	msgClient *messaging.Client
	notifier  *messaging.Notifier
	views     *dashboard.Manager
	Events    *EventBus
	logFn     LogFunc

	stopOnce sync.Once
	stopChan chan struct{}

	mu           sync.Mutex
	docConnected bool
	msgConnected bool
}

func New(c Config) *Engine {
	logFn := c.LogFunc
	if logFn == nil {
		logFn = log.Printf
	}
	e := &Engine{
		cfg:       c.AppConfig,
		db:        c.DB,
		docStore:  c.DocStore,
		assets:    c.Assets,
		msgClient: c.MsgClient,
		Events:    NewEventBus(),
		logFn:     logFn,
		stopChan:  make(chan struct{}),
	}
	var timeout time.Duration
	if c.AppConfig != nil {
		timeout = c.AppConfig.DocStore.Timeout
	}
	e.views = dashboard.NewManager(c.DocStore, &dashboardEmitter{bus: e.Events}, c.Views, timeout)
	if c.MsgClient != nil && c.AppConfig != nil {
		e.notifier = messaging.NewNotifier(c.MsgClient, c.AppConfig.Messaging.EventsTopic, 256)
	}
	return e
}

func (e *Engine) Start() {
	e.wireEventHandlers()
	if e.notifier != nil {
		e.notifier.Start()
	}

	// Emit initial connection status
	e.checkConnectionStatus()

	go e.connectionHealthLoop()

	e.logFn("engine: started (docstore %s)", e.docStore.Name())
}

func (e *Engine) Stop() {
	e.stopOnce.Do(func() { close(e.stopChan) })
	if e.notifier != nil {
		e.notifier.Stop()
	}
	e.logFn("engine: stopped")
}

// Accessors
func (e *Engine) DB() *store.DB              { return e.db }
func (e *Engine) AppConfig() *config.Config  { return e.cfg }
func (e *Engine) DocStore() docstore.Backend { return e.docStore }
func (e *Engine) Views() *dashboard.Manager  { return e.views }
func (e *Engine) Assets() assets.Resolver    { return e.assets }

// Health reports the last observed connection state of each dependency.
type Health struct {
	DocStore          string `json:"docstore"`
	DocStoreConnected bool   `json:"docstore_connected"`
	Messaging         string `json:"messaging"`
	MessagingUp       bool   `json:"messaging_connected"`
	Views             int    `json:"views"`
}

func (e *Engine) Health() Health {
	e.checkConnectionStatus()
	e.mu.Lock()
	defer e.mu.Unlock()
	h := Health{
		DocStore:          e.docStore.Name(),
		DocStoreConnected: e.docConnected,
		Messaging:         "none",
		MessagingUp:       e.msgConnected,
		Views:             e.views.Len(),
	}
	if e.msgClient != nil {
		h.Messaging = e.msgClient.Backend()
	}
	return h
}

func (e *Engine) checkConnectionStatus() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	pingErr := e.docStore.Ping(ctx)
	cancel()
	msgUp := e.msgClient != nil && e.msgClient.IsConnected()

	var events []Event
	e.mu.Lock()
	if pingErr == nil && !e.docConnected {
		e.docConnected = true
		events = append(events, Event{Type: EventDocStoreConnected, Payload: ConnectionEvent{Detail: e.docStore.Name() + " connected"}})
	} else if pingErr != nil && e.docConnected {
		e.docConnected = false
		events = append(events, Event{Type: EventDocStoreDisconnected, Payload: ConnectionEvent{Detail: pingErr.Error()}})
	}
	if msgUp != e.msgConnected {
		e.msgConnected = msgUp
		if msgUp {
			events = append(events, Event{Type: EventMessagingConnected, Payload: ConnectionEvent{Detail: "messaging connected"}})
		} else {
			events = append(events, Event{Type: EventMessagingDisconnected, Payload: ConnectionEvent{Detail: "messaging disconnected"}})
		}
	}
	e.mu.Unlock()

	for _, evt := range events {
		e.Events.Emit(evt)
	}
}

func (e *Engine) connectionHealthLoop() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-e.stopChan:
			return
		case <-ticker.C:
			e.checkConnectionStatus()
		}
	}
}
