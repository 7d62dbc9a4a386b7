// Package transcode converts stored DICOM instances between transfer
// syntaxes through an in-memory codec pipeline. Failures never leave a
// partially written source file behind.
package transcode

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/frame"
	"github.com/suyashkumar/dicom/pkg/tag"

	"github.com/otcheredev/dicomweb-store/internal/storagepath"
)

// Change status taxonomy. Each value names the failing stage and resource.
type statusKind int

const (
	kindFileRead statusKind = iota
	kindFileWrite
	kindConversion
)

// ChangeStatus is the transcode error type.
type ChangeStatus struct {
	kind statusKind
	msg  string
}

func (c *ChangeStatus) Error() string {
	switch c.kind {
	case kindFileRead:
		return "file read error: " + c.msg
	case kindFileWrite:
		return "file write error: " + c.msg
	default:
		return "conversion error: " + c.msg
	}
}

func fileReadError(format string, args ...any) *ChangeStatus {
	return &ChangeStatus{kind: kindFileRead, msg: fmt.Sprintf(format, args...)}
}

func fileWriteError(format string, args ...any) *ChangeStatus {
	return &ChangeStatus{kind: kindFileWrite, msg: fmt.Sprintf(format, args...)}
}

func conversionError(format string, args ...any) *ChangeStatus {
	return &ChangeStatus{kind: kindConversion, msg: fmt.Sprintf(format, args...)}
}

// IsFileRead reports a source-read failure.
func (c *ChangeStatus) IsFileRead() bool { return c.kind == kindFileRead }

// IsFileWrite reports a destination-write failure.
func (c *ChangeStatus) IsFileWrite() bool { return c.kind == kindFileWrite }

// IsConversion reports a codec failure.
func (c *ChangeStatus) IsConversion() bool { return c.kind == kindConversion }

// fallbackBufferSize is used when the caller has no size hint: one plain
// 512x512 single-byte frame.
const fallbackBufferSize = 512 * 512

// ConvertToBuffer reads the instance at srcPath, runs the codec pipeline
// towards target, and returns the serialized result in memory. The buffer
// starts at the size hint (or the fallback) and grows as the output needs; no
// upper limit is applied. Nothing touches disk beyond the source read.
// Retrieval-time transcoding uses this directly.
func ConvertToBuffer(srcPath string, fileSizeHint int64, target string) (*bytes.Buffer, error) {
	ds, err := dicom.ParseFile(srcPath, nil)
	if err != nil {
		return nil, fileReadError("failed to open file %s: %v", srcPath, err)
	}

	size := int(fileSizeHint)
	if size == 0 {
		size = fallbackBufferSize
	}
	buf := bytes.NewBuffer(make([]byte, 0, size))

	out, err := pipeline(&ds, target)
	if err != nil {
		return nil, conversionError("conversion of %s failed: %v", srcPath, err)
	}

	if err := dicom.Write(buf, *out, dicom.SkipVRVerification()); err != nil {
		return nil, conversionError("serialize %s: %v", srcPath, err)
	}
	return buf, nil
}

// Convert runs ConvertToBuffer and writes the result to dstPath. With
// overwrite set, dstPath then atomically replaces srcPath; without it the
// converted object stays at dstPath and srcPath is untouched.
func Convert(srcPath string, fileSizeHint int64, dstPath string, target string, overwrite bool) error {
	buf, err := ConvertToBuffer(srcPath, fileSizeHint, target)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
		return fileWriteError("create output directory for %s: %v", dstPath, err)
	}
	if err := storagepath.WriteFileAtomic(dstPath, buf.Bytes()); err != nil {
		return fileWriteError("write output file %s: %v", dstPath, err)
	}

	if overwrite {
		if err := storagepath.ReplaceFileAtomic(dstPath, srcPath); err != nil {
			return fileWriteError("failed to move %s over %s: %v", dstPath, srcPath, err)
		}
	}
	return nil
}

// pipeline rewrites the dataset for the target syntax. The first stage is
// the only active one: Explicit VR Little Endian for normalization, RLE
// Lossless for viewer compatibility. Photometric interpretation is never
// touched and there is no second stage.
func pipeline(ds *dicom.Dataset, target string) (*dicom.Dataset, error) {
	switch target {
	case ExplicitVRLittleEndian:
		// The serializer emits Explicit VR Little Endian natively once the
		// meta group says so; decoded pixel data is re-encoded unencapsulated.
		if err := setTransferSyntax(ds, ExplicitVRLittleEndian); err != nil {
			return nil, err
		}
		return ds, nil
	case RLELossless:
		if err := encapsulateRLE(ds); err != nil {
			return nil, err
		}
		if err := setTransferSyntax(ds, RLELossless); err != nil {
			return nil, err
		}
		return ds, nil
	default:
		return nil, fmt.Errorf("unsupported pipeline target %s", target)
	}
}

func setTransferSyntax(ds *dicom.Dataset, uid string) error {
	el, err := dicom.NewElement(tag.TransferSyntaxUID, []string{uid})
	if err != nil {
		return fmt.Errorf("build transfer syntax element: %w", err)
	}
	for i, existing := range ds.Elements {
		if existing.Tag == tag.TransferSyntaxUID {
			ds.Elements[i] = el
			return nil
		}
	}
	ds.Elements = append(ds.Elements, el)
	return nil
}

// encapsulateRLE replaces native pixel data with per-frame RLE streams.
// Already-encapsulated input cannot be re-encoded here; the caller is
// expected to have normalized it first.
func encapsulateRLE(ds *dicom.Dataset) error {
	el, err := ds.FindElementByTag(tag.PixelData)
	if err != nil {
		return fmt.Errorf("dataset has no pixel data: %w", err)
	}
	info := dicom.MustGetPixelDataInfo(el.Value)
	if info.IsEncapsulated {
		return fmt.Errorf("pixel data already encapsulated; normalize before RLE encoding")
	}

	samples := 1
	if v, err := ds.FindElementByTag(tag.SamplesPerPixel); err == nil {
		if ints, ok := v.Value.GetValue().([]int); ok && len(ints) > 0 {
			samples = ints[0]
		}
	}

	frames := make([]*frame.Frame, 0, len(info.Frames))
	for i, fr := range info.Frames {
		raw, bytesPerSample, err := nativeSamples(fr)
		if err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		encoded, err := encodeRLEFrame(raw, samples, bytesPerSample)
		if err != nil {
			return fmt.Errorf("RLE encode frame %d: %w", i, err)
		}
		frames = append(frames, &frame.Frame{
			Encapsulated:     true,
			EncapsulatedData: frame.EncapsulatedFrame{Data: encoded},
		})
	}

	newEl, err := dicom.NewElement(tag.PixelData, dicom.PixelDataInfo{
		IsEncapsulated: true,
		Frames:         frames,
	})
	if err != nil {
		return fmt.Errorf("rebuild pixel data element: %w", err)
	}
	for i, existing := range ds.Elements {
		if existing.Tag == tag.PixelData {
			ds.Elements[i] = newEl
			break
		}
	}
	return nil
}

// nativeSamples flattens a native frame to its sample stream and reports the
// byte width of one sample.
func nativeSamples(fr *frame.Frame) ([]int, int, error) {
	switch nd := fr.NativeData.(type) {
	case *frame.NativeFrame[uint8]:
		return widen(nd.RawData), 1, nil
	case *frame.NativeFrame[uint16]:
		return widen(nd.RawData), 2, nil
	case *frame.NativeFrame[uint32]:
		return widen(nd.RawData), 4, nil
	default:
		return nil, 0, fmt.Errorf("frame is not native pixel data")
	}
}

func widen[T uint8 | uint16 | uint32](raw []T) []int {
	out := make([]int, len(raw))
	for i, v := range raw {
		out[i] = int(v)
	}
	return out
}
