package relaywire_test

import (
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/reoring/relaywire"
)

func fullChannel() relaywire.Channel {
	return relaywire.Channel{
		Descriptor: "c1",
		Token:      "t1",
		Sender:     relaywire.Entity{Email: "s@x.com", Name: relaywire.Some("Sender")},
		Recipients: []relaywire.Entity{{Email: "r1@x.com"}, {Email: "r2@x.com", Name: relaywire.Some("R2")}},
		Domain:     "d.com",
		MinPeriod:  0.25,
		MaxSize:    1 << 20,
		Cc:         relaywire.Some([]relaywire.Entity{{Email: "cc@x.com"}}),
		Bcc:        relaywire.Some([]relaywire.Entity{}),
	}
}

func TestEncode_OptionalOmission(t *testing.T) {
	ch := relaywire.NewChannel()
	ch.Descriptor = "c1"
	m, err := relaywire.EncodeChannel(ch, relaywire.Root)
	if err != nil {
		t.Fatalf("encode err: %v", err)
	}
	if _, ok := m["cc"]; ok {
		t.Fatalf("absent cc must not be emitted: %v", m)
	}
	if _, ok := m["bcc"]; ok {
		t.Fatalf("absent bcc must not be emitted: %v", m)
	}
	b, err := relaywire.MarshalJSON(m)
	if err != nil {
		t.Fatalf("marshal err: %v", err)
	}
	if strings.Contains(string(b), "null") {
		t.Fatalf("no nulls expected: %s", b)
	}
	if !strings.Contains(string(b), `"recipients":[]`) {
		t.Fatalf("empty recipients must encode as []: %s", b)
	}
}

func TestEncode_PresentEmptyList(t *testing.T) {
	m, err := relaywire.EncodeChannel(fullChannel(), relaywire.Root)
	if err != nil {
		t.Fatalf("encode err: %v", err)
	}
	bcc, ok := m["bcc"].([]any)
	if !ok || len(bcc) != 0 {
		t.Fatalf("bcc = %#v", m["bcc"])
	}
}

func TestEncode_Shape(t *testing.T) {
	m, err := relaywire.EncodeMessage(relaywire.Message{Subject: "s", Content: "c"}, relaywire.Root)
	if err != nil {
		t.Fatalf("encode err: %v", err)
	}
	want := map[string]any{"subject": "s", "content": "c"}
	if !reflect.DeepEqual(m, want) {
		t.Fatalf("got %#v, want %#v", m, want)
	}

	p := relaywire.ChannelsPage{Page: 1, PageCount: 2, PerPage: 3, Channels: []relaywire.Channel{}}
	pm, err := relaywire.EncodeChannelsPage(p, relaywire.Root)
	if err != nil {
		t.Fatalf("encode err: %v", err)
	}
	if pm["page"] != int64(1) || pm["page_count"] != int64(2) || pm["per_page"] != int64(3) {
		t.Fatalf("unexpected integers: %#v", pm)
	}
}

func TestEncode_Mismatch(t *testing.T) {
	cases := []struct {
		name   string
		value  any
		schema relaywire.Schema
		path   relaywire.Path
	}{
		{"string as int", "1", relaywire.Int(), ""},
		{"float as int", 1.0, relaywire.Int(), ""},
		{"int as float", 1, relaywire.Float(), ""},
		{"int as bool", 0, relaywire.Bool(), ""},
		{"map as list", map[string]any{}, relaywire.ListOf(relaywire.Int()), ""},
		{"int-keyed map", map[int]string{1: "x"}, relaywire.MapOf(relaywire.Str()), ""},
		{"message as entity", relaywire.Message{}, relaywire.Record(relaywire.KindEntity), ""},
		{"bad element", []any{1, "two"}, relaywire.ListOf(relaywire.Int()), "[1]"},
		{"nan", math.NaN(), relaywire.Float(), ""},
		{"huge uint", uint64(math.MaxUint64), relaywire.Int(), ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := relaywire.Encode(tc.value, tc.schema, relaywire.Root)
			ee, ok := relaywire.AsEncodeError(err)
			if !ok {
				t.Fatalf("expected EncodeError, got %v", err)
			}
			if ee.Path != tc.path || ee.Code() != relaywire.CodeEncodeMismatch {
				t.Fatalf("unexpected error: %+v", ee)
			}
		})
	}
}

func TestEncode_TypedCollections(t *testing.T) {
	got, err := relaywire.Encode([]int{1, 2}, relaywire.ListOf(relaywire.Int()), relaywire.Root)
	if err != nil {
		t.Fatalf("encode err: %v", err)
	}
	if !reflect.DeepEqual(got, []any{int64(1), int64(2)}) {
		t.Fatalf("got %#v", got)
	}

	got, err = relaywire.Encode(map[string]float64{"a": 1.5}, relaywire.MapOf(relaywire.Float()), relaywire.Root)
	if err != nil {
		t.Fatalf("encode err: %v", err)
	}
	if !reflect.DeepEqual(got, map[string]any{"a": 1.5}) {
		t.Fatalf("got %#v", got)
	}
}

func TestEncode_RecordPointer(t *testing.T) {
	e := &relaywire.Entity{Email: "a@b.com"}
	got, err := relaywire.Encode(e, relaywire.Record(relaywire.KindEntity), relaywire.Root)
	if err != nil {
		t.Fatalf("encode err: %v", err)
	}
	if !reflect.DeepEqual(got, map[string]any{"email": "a@b.com"}) {
		t.Fatalf("got %#v", got)
	}
	var nilEntity *relaywire.Entity
	if _, err := relaywire.Encode(nilEntity, relaywire.Record(relaywire.KindEntity), relaywire.Root); err == nil {
		t.Fatalf("nil pointer must not encode")
	}
}

func TestEncodeRecord(t *testing.T) {
	for _, r := range []relaywire.DomainRecord{
		relaywire.NewEntity(), relaywire.NewChannel(), relaywire.NewChannelsPage(), relaywire.NewMessage(),
	} {
		if _, err := relaywire.EncodeRecord(r, relaywire.Root); err != nil {
			t.Fatalf("%s: %v", r.RecordKind(), err)
		}
	}
	if _, err := relaywire.EncodeRecord(nil, relaywire.Root); err == nil {
		t.Fatalf("nil record must fail")
	}
	var ch *relaywire.Channel
	if _, err := relaywire.EncodeRecord(ch, relaywire.Root); err == nil {
		t.Fatalf("typed nil record must fail")
	}
}
