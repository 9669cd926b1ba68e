package relaywire

// field binds one JSON key of record R to its schema and its Go field.
// get reports (value, present); required fields are always present.
// set receives a value already decoded against schema.
type field[R any] struct {
	key      string
	schema   Schema
	optional bool
	get      func(r *R) (any, bool)
	set      func(r *R, v any)
}

var entitySchema = Record(KindEntity)

var entityFields = []field[Entity]{
	{
		key: "email", schema: Str(),
		get: func(e *Entity) (any, bool) { return e.Email, true },
		set: func(e *Entity, v any) { e.Email = v.(string) },
	},
	{
		key: "name", schema: Str(), optional: true,
		get: func(e *Entity) (any, bool) { return e.Name.Get() },
		set: func(e *Entity, v any) { e.Name = Some(v.(string)) },
	},
}

var channelFields = []field[Channel]{
	{
		key: "descriptor", schema: Str(),
		get: func(c *Channel) (any, bool) { return c.Descriptor, true },
		set: func(c *Channel, v any) { c.Descriptor = v.(string) },
	},
	{
		key: "token", schema: Str(),
		get: func(c *Channel) (any, bool) { return c.Token, true },
		set: func(c *Channel, v any) { c.Token = v.(string) },
	},
	{
		key: "sender", schema: entitySchema,
		get: func(c *Channel) (any, bool) { return c.Sender, true },
		set: func(c *Channel, v any) { c.Sender = v.(Entity) },
	},
	{
		key: "recipients", schema: ListOf(entitySchema),
		get: func(c *Channel) (any, bool) { return c.Recipients, true },
		set: func(c *Channel, v any) { c.Recipients = listOf[Entity](v) },
	},
	{
		key: "domain", schema: Str(),
		get: func(c *Channel) (any, bool) { return c.Domain, true },
		set: func(c *Channel, v any) { c.Domain = v.(string) },
	},
	{
		key: "min_period", schema: Float(),
		get: func(c *Channel) (any, bool) { return c.MinPeriod, true },
		set: func(c *Channel, v any) { c.MinPeriod = v.(float64) },
	},
	{
		key: "max_size", schema: Int(),
		get: func(c *Channel) (any, bool) { return c.MaxSize, true },
		set: func(c *Channel, v any) { c.MaxSize = int(v.(int64)) },
	},
	{
		key: "cc", schema: ListOf(entitySchema), optional: true,
		get: func(c *Channel) (any, bool) { return c.Cc.Get() },
		set: func(c *Channel, v any) { c.Cc = Some(listOf[Entity](v)) },
	},
	{
		key: "bcc", schema: ListOf(entitySchema), optional: true,
		get: func(c *Channel) (any, bool) { return c.Bcc.Get() },
		set: func(c *Channel, v any) { c.Bcc = Some(listOf[Entity](v)) },
	},
}

var channelsPageFields = []field[ChannelsPage]{
	{
		key: "page", schema: Int(),
		get: func(p *ChannelsPage) (any, bool) { return p.Page, true },
		set: func(p *ChannelsPage, v any) { p.Page = int(v.(int64)) },
	},
	{
		key: "page_count", schema: Int(),
		get: func(p *ChannelsPage) (any, bool) { return p.PageCount, true },
		set: func(p *ChannelsPage, v any) { p.PageCount = int(v.(int64)) },
	},
	{
		key: "per_page", schema: Int(),
		get: func(p *ChannelsPage) (any, bool) { return p.PerPage, true },
		set: func(p *ChannelsPage, v any) { p.PerPage = int(v.(int64)) },
	},
	{
		key: "channels", schema: ListOf(Record(KindChannel)),
		get: func(p *ChannelsPage) (any, bool) { return p.Channels, true },
		set: func(p *ChannelsPage, v any) { p.Channels = listOf[Channel](v) },
	},
}

var messageFields = []field[Message]{
	{
		key: "subject", schema: Str(),
		get: func(m *Message) (any, bool) { return m.Subject, true },
		set: func(m *Message, v any) { m.Subject = v.(string) },
	},
	{
		key: "content", schema: Str(),
		get: func(m *Message) (any, bool) { return m.Content, true },
		set: func(m *Message, v any) { m.Content = v.(string) },
	},
	{
		key: "html", schema: Str(), optional: true,
		get: func(m *Message) (any, bool) { return m.HTML.Get() },
		set: func(m *Message, v any) { m.HTML = Some(v.(string)) },
	},
}

func listOf[T any](v any) []T {
	xs := v.([]any)
	out := make([]T, len(xs))
	for i, x := range xs {
		out[i] = x.(T)
	}
	return out
}

// FieldInfo describes one wire field of a record.
type FieldInfo struct {
	Key      string
	Schema   Schema
	Optional bool
}

// Fields returns the wire fields of a record kind in declaration order.
func Fields(kind RecordKind) []FieldInfo {
	switch kind {
	case KindEntity:
		return fieldInfos(entityFields)
	case KindChannel:
		return fieldInfos(channelFields)
	case KindChannelsPage:
		return fieldInfos(channelsPageFields)
	case KindMessage:
		return fieldInfos(messageFields)
	}
	return nil
}

func fieldInfos[R any](fields []field[R]) []FieldInfo {
	out := make([]FieldInfo, len(fields))
	for i, f := range fields {
		out[i] = FieldInfo{Key: f.key, Schema: f.schema, Optional: f.optional}
	}
	return out
}
