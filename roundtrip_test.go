package relaywire_test

import (
	"reflect"
	"testing"

	"github.com/reoring/relaywire"
)

// roundTrip encodes r, serializes and parses it, and decodes it back.
func roundTrip(t *testing.T, r relaywire.DomainRecord) any {
	t.Helper()
	tree, err := relaywire.EncodeRecord(r, relaywire.Root)
	if err != nil {
		t.Fatalf("encode err: %v", err)
	}
	b, err := relaywire.MarshalJSON(tree)
	if err != nil {
		t.Fatalf("marshal err: %v", err)
	}
	parsed, err := relaywire.ParseJSON(b)
	if err != nil {
		t.Fatalf("parse err: %v", err)
	}
	out, err := relaywire.Decode(parsed, relaywire.Record(r.RecordKind()), relaywire.Root)
	if err != nil {
		t.Fatalf("decode err: %v (json %s)", err, b)
	}
	return out
}

func TestRoundTrip(t *testing.T) {
	records := []relaywire.DomainRecord{
		relaywire.NewEntity(),
		relaywire.Entity{Email: "a@b.com", Name: relaywire.Some("")},
		relaywire.NewChannel(),
		fullChannel(),
		relaywire.Channel{
			Descriptor: "c1", Token: "t1",
			Sender:     relaywire.Entity{Email: "s@x.com"},
			Recipients: []relaywire.Entity{{Email: "r@x.com"}},
			Domain:     "d.com", MinPeriod: 1.0, MaxSize: 100,
		},
		relaywire.NewChannelsPage(),
		relaywire.ChannelsPage{Page: 2, PageCount: 2, PerPage: 1, Channels: []relaywire.Channel{fullChannel()}},
		relaywire.NewMessage(),
		relaywire.Message{Subject: "s", Content: "c", HTML: relaywire.Some("<p>c</p>")},
	}
	for _, r := range records {
		t.Run(r.RecordKind().String(), func(t *testing.T) {
			if got := roundTrip(t, r); !reflect.DeepEqual(got, r) {
				t.Fatalf("round trip mismatch:\n got %#v\nwant %#v", got, r)
			}
		})
	}
}

func TestRoundTrip_StdDriver(t *testing.T) {
	relaywire.SetJSONDriver(relaywire.StdJSONDriver())
	defer relaywire.UseDefaultJSONDriver()

	ch := fullChannel()
	if got := roundTrip(t, ch); !reflect.DeepEqual(got, ch) {
		t.Fatalf("round trip mismatch:\n got %#v\nwant %#v", got, ch)
	}
}
