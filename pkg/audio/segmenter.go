package audio

import "time"

// Segment computes the chunk windows covering a recording of the given
// duration. Consecutive chunks share overlap seconds of audio so that
// words spoken across a boundary appear in both chunks. The last chunk
// ends exactly at duration and may be shorter than chunkLength.
func Segment(duration, chunkLength, overlap time.Duration) ([]ChunkSpec, error) {
	if duration <= 0 {
		return nil, ErrDurationNotPositive
	}
	if chunkLength <= 0 {
		return nil, ErrChunkLengthNotPositive
	}
	if overlap < 0 {
		return nil, ErrOverlapNegative
	}
	if overlap >= chunkLength {
		return nil, ErrOverlapTooLarge
	}

	// Short recording, single chunk covers it whole
	if duration <= chunkLength {
		return []ChunkSpec{{Index: 0, Start: 0, End: duration}}, nil
	}

	step := chunkLength - overlap

	var specs []ChunkSpec
	index := 0
	for start := time.Duration(0); start < duration; start += step {
		end := start + chunkLength
		if end > duration {
			end = duration
		}

		spec := ChunkSpec{
			Index: index,
			Start: start,
			End:   end,
		}
		if index > 0 {
			spec.Overlap = overlap
		}
		specs = append(specs, spec)
		index++

		// Covered the entire recording
		if end >= duration {
			break
		}
	}

	return specs, nil
}
