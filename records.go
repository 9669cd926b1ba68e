package relaywire

import (
	"errors"
	"fmt"
)

// DomainRecord is implemented by the four domain records. The set is closed.
type DomainRecord interface {
	RecordKind() RecordKind
	isRecord()
}

// Entity contains the email address and optionally the name of a mailbox.
type Entity struct {
	Email string
	Name  Optional[string]
}

// Channel binds a descriptor to its routing (sender, recipients, domain) and
// its relay policy (min_period, max_size). The control server stores channels
// keyed by Descriptor and overwrites on re-upload.
type Channel struct {
	Descriptor string
	Token      string
	Sender     Entity
	Recipients []Entity
	// Domain is the mail domain messages of the channel are sent from.
	Domain string
	// MinPeriod is the minimum time between two relayed messages, in seconds.
	MinPeriod float64
	// MaxSize is the maximum size of a relay request, in bytes.
	MaxSize int
	Cc      Optional[[]Entity]
	Bcc     Optional[[]Entity]
}

// ChannelsPage is one page of a channel listing.
type ChannelsPage struct {
	Page      int
	PageCount int
	PerPage   int
	Channels  []Channel
}

// Message is a message to be relayed. When HTML is present the relay server
// sends it instead of Content.
type Message struct {
	Subject string
	Content string
	HTML    Optional[string]
}

func (Entity) RecordKind() RecordKind       { return KindEntity }
func (Channel) RecordKind() RecordKind      { return KindChannel }
func (ChannelsPage) RecordKind() RecordKind { return KindChannelsPage }
func (Message) RecordKind() RecordKind      { return KindMessage }

func (Entity) isRecord()       {}
func (Channel) isRecord()      {}
func (ChannelsPage) isRecord() {}
func (Message) isRecord()      {}

// NewEntity returns an Entity with default values.
func NewEntity() Entity { return Entity{} }

// NewChannel returns a Channel with default values.
func NewChannel() Channel {
	return Channel{Sender: NewEntity(), Recipients: []Entity{}}
}

// NewChannelsPage returns a ChannelsPage with default values.
func NewChannelsPage() ChannelsPage { return ChannelsPage{Channels: []Channel{}} }

// NewMessage returns a Message with default values.
func NewMessage() Message { return Message{} }

// Validate checks the domain constraints of a channel. The codec itself is
// structural and never calls it.
func (c Channel) Validate() error {
	var errs []error
	if c.Descriptor == "" {
		errs = append(errs, errors.New("descriptor must not be empty"))
	}
	if c.MinPeriod < 0 {
		errs = append(errs, fmt.Errorf("min_period must be >= 0, got %g", c.MinPeriod))
	}
	if c.MaxSize <= 0 {
		errs = append(errs, fmt.Errorf("max_size must be > 0, got %d", c.MaxSize))
	}
	return errors.Join(errs...)
}

// Validate checks the pagination constraints of a page.
func (p ChannelsPage) Validate() error {
	var errs []error
	if p.Page < 1 {
		errs = append(errs, fmt.Errorf("page must be >= 1, got %d", p.Page))
	}
	if p.PageCount < 0 {
		errs = append(errs, fmt.Errorf("page_count must be >= 0, got %d", p.PageCount))
	}
	if p.PerPage < 1 {
		errs = append(errs, fmt.Errorf("per_page must be >= 1, got %d", p.PerPage))
	}
	if p.PerPage >= 1 && len(p.Channels) > p.PerPage {
		errs = append(errs, fmt.Errorf("page holds %d channels, more than per_page %d", len(p.Channels), p.PerPage))
	}
	return errors.Join(errs...)
}
