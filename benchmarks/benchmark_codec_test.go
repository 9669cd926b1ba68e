package benchmarks_test

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/reoring/relaywire"
	"github.com/reoring/relaywire/codec"
)

// ---- Helpers ----

// generatePageJSON returns a ChannelsPage document holding numChannels
// channels with numRecipients recipients each.
func generatePageJSON(numChannels, numRecipients int) []byte {
	var buf bytes.Buffer
	buf.Grow(numChannels * (160 + numRecipients*32))
	fmt.Fprintf(&buf, `{"page":1,"page_count":1,"per_page":%d,"channels":[`, numChannels)
	for i := 0; i < numChannels; i++ {
		if i > 0 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(&buf, `{"descriptor":"c%d","token":"t%d","sender":{"email":"s%d@x.com","name":"S"},"recipients":[`, i, i, i)
		for j := 0; j < numRecipients; j++ {
			if j > 0 {
				buf.WriteByte(',')
			}
			fmt.Fprintf(&buf, `{"email":"r%d@x.com"}`, j)
		}
		fmt.Fprintf(&buf, `],"domain":"d.com","min_period":%d,"max_size":1024}`, i%3)
	}
	buf.WriteString(`]}`)
	return buf.Bytes()
}

func withDriver(b *testing.B, d relaywire.JSONDriver) {
	b.Helper()
	relaywire.SetJSONDriver(d)
	b.Cleanup(relaywire.UseDefaultJSONDriver)
}

// ---- Benchmarks ----

func BenchmarkUnmarshalPage(b *testing.B) {
	sizes := []struct{ channels, recipients int }{{1, 1}, {100, 5}, {1000, 10}}
	drivers := []relaywire.JSONDriver{relaywire.CurrentJSONDriver(), relaywire.StdJSONDriver()}
	for _, d := range drivers {
		for _, sz := range sizes {
			data := generatePageJSON(sz.channels, sz.recipients)
			b.Run(fmt.Sprintf("%s/%dx%d", d.Name(), sz.channels, sz.recipients), func(b *testing.B) {
				withDriver(b, d)
				c := codec.ChannelsPage()
				b.ReportAllocs()
				b.SetBytes(int64(len(data)))
				b.ResetTimer()
				for i := 0; i < b.N; i++ {
					if _, err := c.Unmarshal(data); err != nil {
						b.Fatalf("unmarshal: %v", err)
					}
				}
			})
		}
	}
}

func BenchmarkDecodeTree(b *testing.B) {
	tree, err := relaywire.ParseJSON(generatePageJSON(100, 5))
	if err != nil {
		b.Fatalf("parse: %v", err)
	}
	s := relaywire.Record(relaywire.KindChannelsPage)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := relaywire.Decode(tree, s, relaywire.Root); err != nil {
			b.Fatalf("decode: %v", err)
		}
	}
}

func BenchmarkMarshalPage(b *testing.B) {
	page, err := codec.ChannelsPage().Unmarshal(generatePageJSON(100, 5))
	if err != nil {
		b.Fatalf("unmarshal: %v", err)
	}
	c := codec.ChannelsPage()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := c.Marshal(page); err != nil {
			b.Fatalf("marshal: %v", err)
		}
	}
}
