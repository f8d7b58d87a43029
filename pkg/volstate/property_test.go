package volstate_test

import (
	"bytes"
	"context"
	"slices"
	"strings"
	"testing"

	"pgregory.net/rapid"

	"github.com/dmitrymomot/volumekit/pkg/logger"
	"github.com/dmitrymomot/volumekit/pkg/volstate"
)

func drawDomain(t *rapid.T) volstate.Domain {
	return rapid.SampledFrom(volstate.Domains()).Draw(t, "domain")
}

func drawKnown(t *rapid.T, d volstate.Domain, label string) string {
	return rapid.SampledFrom(d.Table().States()).Draw(t, label)
}

func TestPropertyIdentityIgnored(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		d := drawDomain(t)
		s := drawKnown(t, d, "state")
		v, err := volstate.Validate(d, s, s, volstate.WithIdentityIgnored())
		if err != nil || v != volstate.VerdictIgnore {
			t.Fatalf("%s: (%q,%q) = %v, %v; want ignore", d, s, s, v, err)
		}
	})
}

func TestPropertyListedTransitionsAllowed(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		d := drawDomain(t)
		tr := rapid.SampledFrom(d.Table().Transitions()).Draw(t, "transition")
		v, err := volstate.Validate(d, tr.From, tr.To)
		if err != nil || v != volstate.VerdictAllow {
			t.Fatalf("%s: %v = %v, %v; want allow", d, tr, v, err)
		}
	})
}

// Tables are small enough to check every unlisted pair exhaustively.
func TestUnlistedTransitionsRejected(t *testing.T) {
	t.Parallel()
	for _, d := range volstate.Domains() {
		table := d.Table()
		for _, from := range table.States() {
			for _, to := range table.States() {
				if from == to || table.Allows(volstate.T(from, to)) {
					continue
				}
				_, err := volstate.Validate(d, from, to)
				if !volstate.IsInvalidTransitionError(err) {
					t.Errorf("%s: (%q,%q) err = %v; want invalid transition", d, from, to, err)
				}
			}
		}
	}
}

func TestPropertyUnknownStateRejected(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		d := drawDomain(t)
		known := drawKnown(t, d, "known")
		bogus := rapid.StringMatching(`[a-z_\-]{1,16}`).Filter(func(s string) bool {
			return !slices.Contains(d.Table().States(), s)
		}).Draw(t, "bogus")
		suffix := rapid.StringMatching(`(:[a-z0-9\-]{0,8})?`).Draw(t, "suffix")

		checks := [][2]string{
			{bogus + suffix, known},
			{known, bogus + suffix},
		}
		for _, c := range checks {
			_, err := volstate.Validate(d, c[0], c[1], volstate.WithIdentityIgnored())
			if !volstate.IsUnknownStateError(err) {
				t.Fatalf("%s: (%q,%q) err = %v; want unknown state", d, c[0], c[1], err)
			}
		}
	})
}

func TestPropertySuffixIgnored(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		d := drawDomain(t)
		from := drawKnown(t, d, "from")
		to := drawKnown(t, d, "to")
		meta := rapid.StringMatching(`[a-z0-9\-:]{1,12}`).Draw(t, "meta")

		gotV, gotErr := volstate.Validate(d, from+":"+meta, to+":"+meta)
		if from == "" || to == "" {
			// The empty label only exists bare.
			if !volstate.IsUnknownStateError(gotErr) {
				t.Fatalf("%s: suffixed (%q,%q) err = %v; want unknown state", d, from, to, gotErr)
			}
			return
		}
		wantV, wantErr := volstate.Validate(d, from, to)
		if wantV != gotV || (wantErr == nil) != (gotErr == nil) {
			t.Fatalf("%s: suffixed (%q,%q) = %v, %v; bare = %v, %v", d, from, to, gotV, gotErr, wantV, wantErr)
		}
		if wantErr != nil && wantErr.Error() != gotErr.Error() {
			t.Fatalf("%s: error mismatch %q vs %q", d, gotErr, wantErr)
		}
	})
}

// rejectedPairs lists every pair of known states that strict validation with
// identity ignored refuses.
func rejectedPairs(d volstate.Domain) []volstate.Transition {
	table := d.Table()
	var out []volstate.Transition
	for _, from := range table.States() {
		for _, to := range table.States() {
			if from != to && !table.Allows(volstate.T(from, to)) {
				out = append(out, volstate.T(from, to))
			}
		}
	}
	return out
}

func TestPropertyQuietLogsEachRejectionOnce(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		d := drawDomain(t)

		var from, to string
		if rapid.Bool().Draw(t, "unknown") {
			bogus := rapid.StringMatching(`[a-z_\-]{1,16}`).Filter(func(s string) bool {
				return !slices.Contains(d.Table().States(), s)
			}).Draw(t, "bogus")
			known := drawKnown(t, d, "known")
			from, to = bogus, known
			if rapid.Bool().Draw(t, "swap") {
				from, to = to, from
			}
		} else {
			pairs := rejectedPairs(d)
			if len(pairs) == 0 {
				return
			}
			tr := rapid.SampledFrom(pairs).Draw(t, "pair")
			from, to = tr.From, tr.To
		}

		if _, err := volstate.Validate(d, from, to, volstate.WithIdentityIgnored()); err == nil {
			t.Fatalf("%s: (%q,%q) unexpectedly valid", d, from, to)
		}

		var buf bytes.Buffer
		reg := volstate.MustNewRegistry(volstate.WithLogger(logger.New(logger.WithOutput(&buf))))
		if !reg.ValidateQuiet(context.Background(), d, from, to) {
			t.Fatalf("%s: quiet (%q,%q) returned false", d, from, to)
		}
		if n := strings.Count(buf.String(), `"level":"WARN"`); n != 1 {
			t.Fatalf("%s: quiet (%q,%q) wrote %d warnings; want 1\n%s", d, from, to, n, buf.String())
		}
	})
}
