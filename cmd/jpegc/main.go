// Command jpegc encodes, decodes and inspects baseline JPEG files.
//
// Usage:
//
//	jpegc encode [-q quality] [-s 420|422|444] [-std] input.(bmp|png) output.jpg
//	jpegc decode input.jpg output.(png|bmp)
//	jpegc inspect input.jpg
package main

import (
	"bytes"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"

	"github.com/cocosip/go-jpeg-baseline/codec"
	"github.com/cocosip/go-jpeg-baseline/jpeg/baseline"
)

func usage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  jpegc encode [-q quality] [-s 420|422|444] [-std] input.(bmp|png) output.jpg")
	fmt.Fprintln(os.Stderr, "  jpegc decode input.jpg output.(png|bmp)")
	fmt.Fprintln(os.Stderr, "  jpegc inspect input.jpg")
	os.Exit(2)
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("jpegc: ")

	if len(os.Args) < 2 {
		usage()
	}

	var err error
	switch os.Args[1] {
	case "encode":
		err = runEncode(os.Args[2:])
	case "decode":
		err = runDecode(os.Args[2:])
	case "inspect":
		err = runInspect(os.Args[2:])
	default:
		usage()
	}
	if err != nil {
		log.Fatal(err)
	}
}

func runEncode(args []string) error {
	fs := flag.NewFlagSet("encode", flag.ExitOnError)
	quality := fs.Int("q", baseline.DefaultQuality, "Quality (1-100, 50 = standard tables)")
	subsampling := fs.String("s", "420", "Chroma subsampling: 420, 422 or 444")
	standard := fs.Bool("std", false, "Use the standard Huffman tables instead of optimized ones")
	_ = fs.Parse(args)
	if fs.NArg() != 2 {
		usage()
	}

	s, err := baseline.ParseSubsampling(*subsampling)
	if err != nil {
		return err
	}

	f, err := os.Open(fs.Arg(0))
	if err != nil {
		return err
	}
	img, format, err := image.Decode(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("reading %s: %w", fs.Arg(0), err)
	}

	pixels, components := samples(img)
	bounds := img.Bounds()
	opts := &baseline.EncodeOptions{Quality: *quality, Subsampling: s, StandardTables: *standard}
	jpegData, err := baseline.EncodeWithOptions(pixels, bounds.Dx(), bounds.Dy(), components, opts)
	if err != nil {
		return err
	}
	if err := os.WriteFile(fs.Arg(1), jpegData, 0o644); err != nil {
		return err
	}

	log.Printf("%s %dx%d (%d components) -> %d bytes, ratio %.2fx",
		format, bounds.Dx(), bounds.Dy(), components, len(jpegData),
		codec.CompressionRatio(len(pixels), len(jpegData)))
	return nil
}

// samples flattens an image to interleaved grayscale or RGB bytes
func samples(img image.Image) ([]byte, int) {
	b := img.Bounds()
	if gray, ok := img.(*image.Gray); ok {
		out := make([]byte, 0, b.Dx()*b.Dy())
		for y := b.Min.Y; y < b.Max.Y; y++ {
			out = append(out, gray.Pix[gray.PixOffset(b.Min.X, y):gray.PixOffset(b.Max.X, y)]...)
		}
		return out, 1
	}

	out := make([]byte, 0, b.Dx()*b.Dy()*3)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
			out = append(out, c.R, c.G, c.B)
		}
	}
	return out, 3
}

func runDecode(args []string) error {
	fs := flag.NewFlagSet("decode", flag.ExitOnError)
	_ = fs.Parse(args)
	if fs.NArg() != 2 {
		usage()
	}

	jpegData, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return err
	}
	pixels, width, height, components, err := baseline.Decode(jpegData)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", fs.Arg(0), err)
	}

	var img image.Image
	switch components {
	case 1:
		img = &image.Gray{Pix: pixels, Stride: width, Rect: image.Rect(0, 0, width, height)}
	case 3:
		rgba := image.NewRGBA(image.Rect(0, 0, width, height))
		for i := 0; i < width*height; i++ {
			copy(rgba.Pix[i*4:], pixels[i*3:i*3+3])
			rgba.Pix[i*4+3] = 0xFF
		}
		img = rgba
	default:
		return fmt.Errorf("cannot write a %d-component image", components)
	}

	var buf bytes.Buffer
	switch strings.ToLower(filepath.Ext(fs.Arg(1))) {
	case ".bmp":
		err = bmp.Encode(&buf, img)
	default:
		err = png.Encode(&buf, img)
	}
	if err != nil {
		return err
	}
	if err := os.WriteFile(fs.Arg(1), buf.Bytes(), 0o644); err != nil {
		return err
	}

	log.Printf("%dx%d (%d components) -> %s", width, height, components, fs.Arg(1))
	return nil
}

func runInspect(args []string) error {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		usage()
	}

	f, err := os.Open(fs.Arg(0))
	if err != nil {
		return err
	}
	defer f.Close()

	doc := baseline.NewDocument()
	n, err := doc.ReadFrom(f)
	fmt.Print(doc)
	if err != nil {
		return fmt.Errorf("after %d bytes: %w", n, err)
	}
	return nil
}
