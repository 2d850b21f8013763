package main

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/klauspost/compress/zstd"

	"github.com/deepteams/pixelart"
)

// Raw container layout:
//
//	magic   [4]byte "PXZ1"
//	width   uint32 big endian
//	height  uint32 big endian
//	payload zstd stream of width*height*4 RGBA bytes
const (
	rawMagic  = "PXZ1"
	rawExt    = ".rgba.zst"
	rawHeader = len(rawMagic) + 8

	// maxRawPixels bounds the allocation of a decoded frame.
	maxRawPixels = 1 << 28
)

var errRawFormat = errors.New("raw: invalid container")

func init() {
	image.RegisterFormat("rgbazst", rawMagic, decodeRaw, decodeRawConfig)
}

func readRawHeader(r io.Reader) (w, h int, err error) {
	var hdr [rawHeader]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return 0, 0, fmt.Errorf("%w: %v", errRawFormat, err)
	}
	if string(hdr[:4]) != rawMagic {
		return 0, 0, fmt.Errorf("%w: bad magic", errRawFormat)
	}
	w = int(binary.BigEndian.Uint32(hdr[4:8]))
	h = int(binary.BigEndian.Uint32(hdr[8:12]))
	if w <= 0 || h <= 0 || w > maxRawPixels/h {
		return 0, 0, fmt.Errorf("%w: dimensions %dx%d", errRawFormat, w, h)
	}
	return w, h, nil
}

func decodeRawConfig(r io.Reader) (image.Config, error) {
	w, h, err := readRawHeader(r)
	if err != nil {
		return image.Config{}, err
	}
	return image.Config{ColorModel: color.NRGBAModel, Width: w, Height: h}, nil
}

func decodeRaw(r io.Reader) (image.Image, error) {
	w, h, err := readRawHeader(r)
	if err != nil {
		return nil, err
	}
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	if _, err := io.ReadFull(dec, img.Pix); err != nil {
		return nil, fmt.Errorf("%w: payload: %v", errRawFormat, err)
	}
	return img, nil
}

func encodeRaw(w io.Writer, img image.Image) error {
	buf := pixelart.FromImage(img)
	bw := bufio.NewWriter(w)

	var hdr [rawHeader]byte
	copy(hdr[:], rawMagic)
	binary.BigEndian.PutUint32(hdr[4:8], uint32(buf.Width))
	binary.BigEndian.PutUint32(hdr[8:12], uint32(buf.Height))
	if _, err := bw.Write(hdr[:]); err != nil {
		return err
	}

	enc, err := zstd.NewWriter(bw, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return err
	}
	if _, err := enc.Write(buf.Pix); err != nil {
		enc.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	return bw.Flush()
}
