package colorkey

// Convert returns a copy of src in which every pixel whose RGB channels equal
// target has alpha 0. RGB is never modified and non-matching pixels keep their
// original alpha. The second return value is the number of keyed pixels.
//
// src is not mutated. On error no output is produced.
func Convert(src Snapshot, target Color) (Snapshot, int, error) {
	if err := src.Validate(); err != nil {
		return Snapshot{}, 0, err
	}

	out := make([]byte, len(src.Pix))
	copy(out, src.Pix)

	keyed := 0
	for i := 0; i < len(out); i += 4 {
		if target.Matches(out[i], out[i+1], out[i+2]) {
			out[i+3] = 0
			keyed++
		}
	}
	return NewSnapshot(src.Width, src.Height, out), keyed, nil
}
