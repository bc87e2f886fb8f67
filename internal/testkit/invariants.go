package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"testlint/internal/segment"
	"testlint/internal/source"
)

// CheckSegmentInvariants runs a minimal set of segment invariants on a scanned region:
// 1) segments are non-empty, ordered and cover the region with no gaps
// 2) every span stays inside the file content bounds
// 3) declaration segments carry a Decl whose header, body, name and args nest inside the span
func CheckSegmentInvariants(segs []segment.Segment, region source.Span, sf *source.File) error {
	if sf == nil {
		return fmt.Errorf("nil file")
	}
	lenContent, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}
	if region.End > lenContent {
		return fmt.Errorf("region end beyond content: %d > %d", region.End, lenContent)
	}
	if region.Empty() {
		if len(segs) != 0 {
			return fmt.Errorf("empty region produced %d segments", len(segs))
		}
		return nil
	}

	cursor := region.Start
	for i, seg := range segs {
		sp := seg.Span
		if sp.File != sf.ID {
			return fmt.Errorf("segment %d points to different file id: got=%d want=%d", i, sp.File, sf.ID)
		}
		if sp.End <= sp.Start {
			return fmt.Errorf("empty segment %d: %v", i, sp)
		}
		if sp.Start != cursor {
			return fmt.Errorf("segment %d breaks coverage: starts at %d, want %d", i, sp.Start, cursor)
		}
		if sp.End > region.End {
			return fmt.Errorf("segment %d runs past the region: %d > %d", i, sp.End, region.End)
		}
		cursor = sp.End

		switch seg.Kind {
		case segment.KindOther:
			if seg.Decl != nil {
				return fmt.Errorf("segment %d: other segment carries a decl", i)
			}
		case segment.KindDeclaration:
			if err := checkDecl(i, seg); err != nil {
				return err
			}
		default:
			return fmt.Errorf("segment %d has unknown kind %d", i, seg.Kind)
		}
	}
	if cursor != region.End {
		return fmt.Errorf("segments stop at %d, region ends at %d", cursor, region.End)
	}
	return nil
}

func checkDecl(i int, seg segment.Segment) error {
	d := seg.Decl
	if d == nil {
		return fmt.Errorf("segment %d: declaration without a decl", i)
	}
	if d.Span != seg.Span {
		return fmt.Errorf("segment %d: decl span %v differs from segment span %v", i, d.Span, seg.Span)
	}
	if !contains(d.Span, d.Header) {
		return fmt.Errorf("segment %d: header %v outside declaration %v", i, d.Header, d.Span)
	}
	if !d.Body.Empty() {
		if !contains(d.Span, d.Body) {
			return fmt.Errorf("segment %d: body %v outside declaration %v", i, d.Body, d.Span)
		}
		if d.Header.End > d.Body.Start {
			return fmt.Errorf("segment %d: header %v overlaps body %v", i, d.Header, d.Body)
		}
	}
	if d.Name != "" && !contains(d.Header, d.NameSpan) {
		return fmt.Errorf("segment %d: name span %v outside header %v", i, d.NameSpan, d.Header)
	}
	for j, arg := range d.Args {
		if arg.Span.Empty() {
			continue
		}
		if !contains(d.Header, arg.Span) {
			return fmt.Errorf("segment %d: arg %d span %v outside header %v", i, j, arg.Span, d.Header)
		}
	}
	return nil
}

func contains(outer, inner source.Span) bool {
	return outer.File == inner.File && inner.Start >= outer.Start && inner.End <= outer.End
}
