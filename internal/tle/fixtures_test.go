package tle

import (
	"io"
	"log/slog"
)

var testLogger = slog.New(slog.NewJSONHandler(io.Discard, nil))

// gnssSample mimics CelesTrak's gnss.txt: a GPS entry, a QZSS entry and a
// NAVSTAR-named entry.
const gnssSample = `GPS BIIR-2  (PRN 13)
1 24876U 97035A   24290.51226660  .00000064  00000+0  00000+0 0  9994
2 24876  55.4960 118.4578 0093307  58.4585 302.4632  2.00563223192778
QZS-2 (QZSS/PRN 184)
1 42738U 17028A   24290.50000000 -.00000138  00000+0  00000+0 0  9995
2 42738  41.0312 159.0925 0745003 270.2185 283.2412  1.00267102126305
NAVSTAR 76 (USA 266)
1 43001U 17062A   24290.50000000 -.00000100  00000+0  00000+0 0  9996
2 43001  55.0000 240.0000 0010000 100.0000 200.0000  2.00560000 12343
`
