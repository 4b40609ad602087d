package notification

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
)

// Channel names a delivery channel a definition can render for.
type Channel string

const (
	ChannelEmail  Channel = "email"
	ChannelWeb    Channel = "web"
	ChannelMobile Channel = "mobile"
)

// Channels lists every channel the dispatcher fans out over, in a fixed order.
func Channels() []Channel {
	return []Channel{ChannelEmail, ChannelWeb, ChannelMobile}
}

// Definition is the declarative source of one notification: a composite key
// plus raw per-channel template strings. A nil channel, or a channel whose
// fields are all blank, opts that definition out of the channel.
type Definition struct {
	// Type is the composite key: EntityType:action[:fieldPath...][:audience],
	// e.g. "GroupMember:create:status:pending-invited:member".
	Type string

	Email  *EmailTemplate
	Web    *WebTemplate
	Mobile *MobileTemplate

	// MuteKey, when set, lets recipients mute this family of notifications.
	MuteKey string
}

type EmailTemplate struct {
	Subject string
	Body    string
}

type WebTemplate struct {
	Text string
	Path string
}

type MobileTemplate struct {
	Title string
	Body  string
}

// CompiledDefinition is a Definition with every field compiled. Suppressed
// channels (nil or all-blank) are dropped at compile time, so a non-nil
// channel here always has at least one renderable field.
type CompiledDefinition struct {
	Type    string
	MuteKey string

	Email  *CompiledEmail
	Web    *CompiledWeb
	Mobile *CompiledMobile
}

type CompiledEmail struct {
	Subject *Template
	Body    *Template
}

type CompiledWeb struct {
	Text *Template
	Path *Template
}

type CompiledMobile struct {
	Title *Template
	Body  *Template
}

// HasChannel reports whether the definition renders for ch.
func (d *CompiledDefinition) HasChannel(ch Channel) bool {
	switch ch {
	case ChannelEmail:
		return d.Email != nil
	case ChannelWeb:
		return d.Web != nil
	case ChannelMobile:
		return d.Mobile != nil
	}
	return false
}

// Registry owns the key -> definition mapping. It is populated once at
// startup and read-only afterwards, so lookups need no locking.
type Registry struct {
	defs map[string]*CompiledDefinition
}

func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*CompiledDefinition)}
}

// Register compiles def and inserts it under def.Type. A key collision is a
// *DuplicateKeyError; a malformed template string is a *BadTemplateError
// wrapped with the key and field it came from.
func (r *Registry) Register(def Definition) error {
	if def.Type == "" {
		return fmt.Errorf("notification definition is missing a key")
	}
	if _, exists := r.defs[def.Type]; exists {
		return &DuplicateKeyError{Key: def.Type}
	}
	compiled, err := compileDefinition(def)
	if err != nil {
		return err
	}
	r.defs[def.Type] = compiled
	return nil
}

// Resolve returns the compiled definition for key, or *UnknownKeyError.
func (r *Registry) Resolve(key string) (*CompiledDefinition, error) {
	def, ok := r.defs[key]
	if !ok {
		return nil, &UnknownKeyError{Key: key}
	}
	return def, nil
}

// Len returns the number of registered definitions.
func (r *Registry) Len() int { return len(r.defs) }

// Keys returns all registered keys, sorted.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.defs))
	for k := range r.defs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Load registers defs in the order given, which keeps duplicate detection
// reproducible across runs. A duplicate key aborts the load; a definition
// with a malformed template is rejected and logged without stopping the
// rest of the registry from loading.
func (r *Registry) Load(defs []Definition, log *slog.Logger) error {
	if log == nil {
		log = slog.Default()
	}
	for _, def := range defs {
		err := r.Register(def)
		if err == nil {
			continue
		}
		var dup *DuplicateKeyError
		if errors.As(err, &dup) {
			return err
		}
		log.Error("rejected notification definition",
			"key", def.Type,
			"error", err,
		)
	}
	return nil
}

func compileDefinition(def Definition) (*CompiledDefinition, error) {
	out := &CompiledDefinition{Type: def.Type, MuteKey: def.MuteKey}

	if def.Email != nil && (def.Email.Subject != "" || def.Email.Body != "") {
		subject, err := compileField(def.Type, "email.subject", def.Email.Subject)
		if err != nil {
			return nil, err
		}
		body, err := compileField(def.Type, "email.body", def.Email.Body)
		if err != nil {
			return nil, err
		}
		out.Email = &CompiledEmail{Subject: subject, Body: body}
	}

	if def.Web != nil && (def.Web.Text != "" || def.Web.Path != "") {
		text, err := compileField(def.Type, "web.text", def.Web.Text)
		if err != nil {
			return nil, err
		}
		path, err := compileField(def.Type, "web.path", def.Web.Path)
		if err != nil {
			return nil, err
		}
		out.Web = &CompiledWeb{Text: text, Path: path}
	}

	if def.Mobile != nil && (def.Mobile.Title != "" || def.Mobile.Body != "") {
		title, err := compileField(def.Type, "mobile.title", def.Mobile.Title)
		if err != nil {
			return nil, err
		}
		body, err := compileField(def.Type, "mobile.body", def.Mobile.Body)
		if err != nil {
			return nil, err
		}
		out.Mobile = &CompiledMobile{Title: title, Body: body}
	}

	return out, nil
}

func compileField(key, field, src string) (*Template, error) {
	t, err := Compile(src)
	if err != nil {
		return nil, fmt.Errorf("compile %s %s: %w", key, field, err)
	}
	return t, nil
}
