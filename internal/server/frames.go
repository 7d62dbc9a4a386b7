package server

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/frame"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// ParseFrameList parses the comma-separated, 1-based frame list of a
// /frames/{frameList} request.
func ParseFrameList(raw string) ([]int, error) {
	var frames []int
	for _, piece := range strings.Split(raw, ",") {
		piece = strings.TrimSpace(piece)
		if piece == "" {
			continue
		}
		n, err := strconv.Atoi(piece)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid frame number %q", piece)
		}
		frames = append(frames, n)
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("empty frame list")
	}
	return frames, nil
}

// ExtractFrames pulls the requested 1-based frames out of a stored instance.
func ExtractFrames(path string, wanted []int) ([][]byte, error) {
	ds, err := dicom.ParseFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	el, err := ds.FindElementByTag(tag.PixelData)
	if err != nil {
		return nil, fmt.Errorf("no pixel data in %s: %w", path, err)
	}
	info := dicom.MustGetPixelDataInfo(el.Value)

	out := make([][]byte, 0, len(wanted))
	for _, n := range wanted {
		if n > len(info.Frames) {
			return nil, fmt.Errorf("frame %d out of range, instance has %d", n, len(info.Frames))
		}
		data, err := frameBytes(info.Frames[n-1])
		if err != nil {
			return nil, fmt.Errorf("frame %d of %s: %w", n, path, err)
		}
		out = append(out, data)
	}
	return out, nil
}

// frameBytes flattens one frame to its wire bytes: encapsulated frames pass
// through, native frames serialize sample-interleaved little endian.
func frameBytes(fr *frame.Frame) ([]byte, error) {
	if fr.Encapsulated {
		return fr.EncapsulatedData.Data, nil
	}
	switch nd := fr.NativeData.(type) {
	case *frame.NativeFrame[uint8]:
		out := make([]byte, len(nd.RawData))
		for i, v := range nd.RawData {
			out[i] = v
		}
		return out, nil
	case *frame.NativeFrame[uint16]:
		out := make([]byte, 0, len(nd.RawData)*2)
		for _, v := range nd.RawData {
			out = append(out, byte(v), byte(v>>8))
		}
		return out, nil
	case *frame.NativeFrame[uint32]:
		out := make([]byte, 0, len(nd.RawData)*4)
		for _, v := range nd.RawData {
			out = append(out, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
		}
		return out, nil
	default:
		return nil, fmt.Errorf("frame carries no native pixel data")
	}
}
