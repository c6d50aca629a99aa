package display

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"text/tabwriter"

	"github.com/backmassage/bidsmanager/internal/bids"
	"github.com/backmassage/bidsmanager/internal/term"
)

// ImageView is everything the show command prints for one file.
type ImageView struct {
	Image    *bids.Image
	Size     int64          // -1 when the file is not on disk.
	Sidecar  string         // Sidecar path; empty when it cannot be derived.
	Metadata map[string]any // nil when no sidecar exists.
}

// WriteImage prints v as an aligned key/value block. Entity and metadata
// rows are uncolored and aligned by a tabwriter.
func WriteImage(w io.Writer, v ImageView) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	img := v.Image

	row(tw, "path", img.Location())
	row(tw, "class", string(img.Class()))
	row(tw, "modality", img.Modality())
	row(tw, "extension", img.Extension())
	if v.Size >= 0 {
		row(tw, "size", FormatBytes(v.Size))
	}

	fmt.Fprintln(tw, term.Paint(term.Cyan, "entities"))
	for _, f := range img.Entities() {
		name := "(extra)"
		if e, ok := bids.LookupEntity(f.Key); ok && !f.Extra {
			name = e.Name
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", f.Key, f.Value, name)
	}

	if v.Sidecar != "" {
		row(tw, "sidecar", v.Sidecar)
	}
	if v.Metadata == nil {
		row(tw, "metadata", "(none)")
	} else {
		fmt.Fprintln(tw, term.Paint(term.Cyan, "metadata"))
		for _, k := range slices.Sorted(maps.Keys(v.Metadata)) {
			fmt.Fprintf(tw, "  %s\t%v\n", k, v.Metadata[k])
		}
	}
	return tw.Flush()
}

// labelWidth fits the longest top-level label ("extension") plus a gap.
const labelWidth = 11

// row writes a label/value line. The label is padded before it is colored
// and carries no tab, so color codes never reach the tabwriter's width math.
func row(w io.Writer, label, value string) {
	fmt.Fprintf(w, "%s%s\n", term.Paint(term.Cyan, fmt.Sprintf("%-*s", labelWidth, label)), value)
}
