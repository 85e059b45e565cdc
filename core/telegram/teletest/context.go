// Package teletest provides an in-memory tele.Context for handler tests.
package teletest

import (
	"strings"
	"sync"

	tele "gopkg.in/telebot.v4"
)

// Call records one outbound API call made through the context.
type Call struct {
	What any
	Opts []any
}

// Text returns the call payload when it is a string.
func (c Call) Text() string {
	s, _ := c.What.(string)
	return s
}

// Markup returns the reply markup attached to the call, if any.
func (c Call) Markup() *tele.ReplyMarkup {
	if m, ok := c.What.(*tele.ReplyMarkup); ok {
		return m
	}
	for _, o := range c.Opts {
		switch v := o.(type) {
		case *tele.ReplyMarkup:
			return v
		case *tele.SendOptions:
			if v != nil && v.ReplyMarkup != nil {
				return v.ReplyMarkup
			}
		}
	}
	return nil
}

// Context implements the parts of tele.Context used by handlers.
// Calling any other method panics through the nil embedded interface.
type Context struct {
	tele.Context

	U tele.Update

	mu        sync.Mutex
	store     map[string]any
	Sent      []Call
	Edits     []Call
	Responses []*tele.CallbackResponse
	Actions   []tele.ChatAction
}

// New wraps an update.
func New(u tele.Update) *Context {
	return &Context{U: u, store: map[string]any{}}
}

// Message builds a private-chat text message update from user.
func Message(updateID int, user *tele.User, text string) *Context {
	return New(tele.Update{ID: updateID, Message: &tele.Message{
		ID:     updateID,
		Sender: user,
		Chat:   &tele.Chat{ID: user.ID, Type: tele.ChatPrivate},
		Text:   text,
	}})
}

// Forward builds a message forwarded from origin the way Bot API 7+ sends
// it: forward_origin only, with no legacy forward_from. A nil origin models
// a forward whose sender hid their account.
func Forward(updateID int, user, origin *tele.User) *Context {
	c := Message(updateID, user, "forwarded")
	if origin == nil {
		c.U.Message.Origin = &tele.MessageOrigin{Type: "hidden_user", SenderUsername: "Hidden Sender"}
		return c
	}
	c.U.Message.Origin = &tele.MessageOrigin{Type: "user", Sender: origin}
	return c
}

// RawCallback builds a button press the way telebot delivers it to
// OnCallback: Unique empty and Data holding "\f<unique>|<payload>".
func RawCallback(updateID int, user *tele.User, unique, payload string) *Context {
	return Callback(updateID, user, "", "\f"+unique+"|"+payload)
}

// Photo builds a message carrying a photo with the given file id.
func Photo(updateID int, user *tele.User, fileID string) *Context {
	c := Message(updateID, user, "")
	c.U.Message.Photo = &tele.Photo{File: tele.File{FileID: fileID}}
	return c
}

// Document builds a message carrying a document with the given file id.
func Document(updateID int, user *tele.User, fileID string) *Context {
	c := Message(updateID, user, "")
	c.U.Message.Document = &tele.Document{File: tele.File{FileID: fileID}}
	return c
}

// Callback builds an inline button press with unique and payload on a
// message in the user's private chat.
func Callback(updateID int, user *tele.User, unique, payload string) *Context {
	return New(tele.Update{ID: updateID, Callback: &tele.Callback{
		ID:     "cb",
		Sender: user,
		Unique: unique,
		Data:   payload,
		Message: &tele.Message{
			ID:   1,
			Chat: &tele.Chat{ID: user.ID, Type: tele.ChatPrivate},
		},
	}})
}

func (c *Context) Update() tele.Update { return c.U }

func (c *Context) Message() *tele.Message {
	switch {
	case c.U.Message != nil:
		return c.U.Message
	case c.U.Callback != nil:
		return c.U.Callback.Message
	}
	return nil
}

func (c *Context) Callback() *tele.Callback { return c.U.Callback }

func (c *Context) Sender() *tele.User {
	switch {
	case c.U.Callback != nil:
		return c.U.Callback.Sender
	case c.U.Message != nil:
		return c.U.Message.Sender
	}
	return nil
}

func (c *Context) Chat() *tele.Chat {
	if m := c.Message(); m != nil {
		return m.Chat
	}
	return nil
}

// Text mirrors telebot: a media caption wins over the message text.
func (c *Context) Text() string {
	m := c.U.Message
	switch {
	case m == nil:
		return ""
	case m.Caption != "":
		return m.Caption
	}
	return m.Text
}

func (c *Context) Data() string {
	if c.U.Callback != nil {
		return c.U.Callback.Data
	}
	return ""
}

func (c *Context) Args() []string {
	return strings.Fields(c.Data())
}

func (c *Context) Get(key string) any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store[key]
}

func (c *Context) Set(key string, val any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[key] = val
}

func (c *Context) Send(what any, opts ...any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Sent = append(c.Sent, Call{What: what, Opts: opts})
	return nil
}

func (c *Context) Reply(what any, opts ...any) error {
	return c.Send(what, opts...)
}

func (c *Context) Edit(what any, opts ...any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Edits = append(c.Edits, Call{What: what, Opts: opts})
	return nil
}

func (c *Context) Respond(resp ...*tele.CallbackResponse) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(resp) == 0 {
		resp = []*tele.CallbackResponse{{}}
	}
	c.Responses = append(c.Responses, resp[0])
	return nil
}

func (c *Context) Notify(action tele.ChatAction) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Actions = append(c.Actions, action)
	return nil
}

// LastText returns the text of the most recent sent message.
func (c *Context) LastText() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.Sent) == 0 {
		return ""
	}
	return c.Sent[len(c.Sent)-1].Text()
}

// Texts returns the text of every sent message in order.
func (c *Context) Texts() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.Sent))
	for _, s := range c.Sent {
		out = append(out, s.Text())
	}
	return out
}

// Notices returns the text of every callback response in order.
func (c *Context) Notices() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.Responses))
	for _, r := range c.Responses {
		out = append(out, r.Text)
	}
	return out
}
