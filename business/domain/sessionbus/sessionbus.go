// Package sessionbus provides the process wide session: the one tenant user
// this process acts for, kept in memory and in a durable key value slot.
package sessionbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jcpaschoal/jhgestor/business/domain/userbus"
	"github.com/jcpaschoal/jhgestor/foundation/logger"
	"github.com/jcpaschoal/jhgestor/foundation/otel"
)

// ErrNotFound is returned by a Storer when the slot is empty.
var ErrNotFound = errors.New("session not found")

// DefaultAppName names the slot when no application name is configured.
const DefaultAppName = "JHGESTOR"

// Storer interface declares the behavior this package needs to persist and
// retrieve the session.
type Storer interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Listener is told about a new session identity, or with ok false, about
// the session going away.
type Listener func(ctx context.Context, usr userbus.User, ok bool)

// Core manages the set of APIs for the session.
type Core struct {
	log    *logger.Logger
	storer Storer
	key    string

	mu     sync.Mutex
	loaded bool
	usr    *userbus.User

	lmu       sync.RWMutex
	listeners []Listener
}

// NewCore constructs a session core API for use. The slot key is derived
// from the application name.
func NewCore(log *logger.Logger, storer Storer, appName string) *Core {
	return &Core{
		log:    log,
		storer: storer,
		key:    Key(appName),
	}
}

// Key returns the slot key for the application.
func Key(appName string) string {
	appName = strings.TrimSpace(appName)
	if appName == "" {
		appName = DefaultAppName
	}
	return strings.ToUpper(appName) + "_SESSION"
}

// AddListener registers fn to run on identity changes.
func (c *Core) AddListener(fn Listener) {
	c.lmu.Lock()
	defer c.lmu.Unlock()

	c.listeners = append(c.listeners, fn)
}

// Load reads the persisted session into memory and notifies the listeners
// when one is present. Unreadable data is logged and treated as absent.
func (c *Core) Load(ctx context.Context) {
	ctx, span := otel.AddSpan(ctx, "business.sessionbus.load")
	defer span.End()

	c.mu.Lock()
	usr, ok := c.load(ctx)
	c.mu.Unlock()

	if ok {
		c.notify(ctx, usr, true)
	}
}

// Current returns the session user, if any.
func (c *Core) Current(ctx context.Context) (userbus.User, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.loaded {
		return c.load(ctx)
	}

	if c.usr == nil {
		return userbus.User{}, false
	}

	return *c.usr, true
}

// Set persists usr as the session and then makes it current. When the
// session was absent or belonged to another user, listeners are notified.
func (c *Core) Set(ctx context.Context, usr userbus.User) error {
	ctx, span := otel.AddSpan(ctx, "business.sessionbus.set")
	defer span.End()

	usr = normalize(usr)

	data, err := json.Marshal(toRecord(usr))
	if err != nil {
		return fmt.Errorf("marshal: userID[%s]: %w", usr.ID, err)
	}

	c.mu.Lock()

	if err := c.storer.Set(ctx, c.key, data); err != nil {
		c.mu.Unlock()
		return fmt.Errorf("persist: userID[%s]: %w", usr.ID, err)
	}

	changed := c.usr == nil || c.usr.ID != usr.ID
	c.usr = &usr
	c.loaded = true

	c.mu.Unlock()

	if changed {
		c.notify(ctx, usr, true)
	}

	return nil
}

// Refresh persists a newer profile of the session user. Nothing is written
// and false is returned when the session is absent or belongs to another
// user. Listeners are not notified.
func (c *Core) Refresh(ctx context.Context, usr userbus.User) (bool, error) {
	ctx, span := otel.AddSpan(ctx, "business.sessionbus.refresh")
	defer span.End()

	usr = normalize(usr)

	data, err := json.Marshal(toRecord(usr))
	if err != nil {
		return false, fmt.Errorf("marshal: userID[%s]: %w", usr.ID, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.loaded {
		c.load(ctx)
	}

	if c.usr == nil || c.usr.ID != usr.ID {
		return false, nil
	}

	if err := c.storer.Set(ctx, c.key, data); err != nil {
		return false, fmt.Errorf("persist: userID[%s]: %w", usr.ID, err)
	}

	c.usr = &usr

	return true, nil
}

// Clear removes the session. Listeners are notified even when no session
// was present, so derived state is always dropped on logout.
func (c *Core) Clear(ctx context.Context) error {
	ctx, span := otel.AddSpan(ctx, "business.sessionbus.clear")
	defer span.End()

	c.mu.Lock()

	if err := c.storer.Delete(ctx, c.key); err != nil && !errors.Is(err, ErrNotFound) {
		c.mu.Unlock()
		return fmt.Errorf("delete: %w", err)
	}

	c.usr = nil
	c.loaded = true

	c.mu.Unlock()

	c.notify(ctx, userbus.User{}, false)

	return nil
}

// State returns the gate state of the current session.
func (c *Core) State(ctx context.Context) State {
	return StateOf(c.Current(ctx))
}

// =============================================================================

// load must be called holding mu.
func (c *Core) load(ctx context.Context) (userbus.User, bool) {
	c.loaded = true
	c.usr = nil

	data, err := c.storer.Get(ctx, c.key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			c.log.Error(ctx, "session: read", "key", c.key, "ERROR", err)
		}
		return userbus.User{}, false
	}

	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		c.log.Error(ctx, "session: corrupt record", "key", c.key, "ERROR", err)
		return userbus.User{}, false
	}

	usr, err := toUser(r)
	if err != nil {
		c.log.Error(ctx, "session: corrupt record", "key", c.key, "ERROR", err)
		return userbus.User{}, false
	}

	c.usr = &usr

	return usr, true
}

func (c *Core) notify(ctx context.Context, usr userbus.User, ok bool) {
	c.lmu.RLock()
	ls := make([]Listener, len(c.listeners))
	copy(ls, c.listeners)
	c.lmu.RUnlock()

	for _, fn := range ls {
		fn(ctx, usr, ok)
	}
}

func normalize(usr userbus.User) userbus.User {
	if usr.OwnerID == uuid.Nil {
		usr.OwnerID = usr.ID
	}
	return usr
}
