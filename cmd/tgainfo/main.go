package main

import (
	"flag"
	"fmt"
	"os"

	"tinyrender/internal/imageio"
	"tinyrender/internal/tgaimage"
)

func describe(path string) (*tgaimage.Image, error) {
	img, hdr, err := tgaimage.ReadFile(path)
	if err != nil {
		return nil, err
	}

	origin := "bottom-left"
	if hdr.Options().TopLeft {
		origin = "top-left"
	}
	enc := "raw"
	if hdr.Compressed() {
		enc = "RLE"
	}
	fmt.Printf("%s\n", path)
	fmt.Printf("  type=%d (%s) %dx%d %d bpp, origin %s, descriptor 0x%02x, id %d bytes\n",
		hdr.DataTypeCode, enc, hdr.Width, hdr.Height, hdr.BitsPerPixel, origin,
		hdr.ImageDescriptor, hdr.IDLength)
	return img, nil
}

func main() {
	out := flag.String("o", "", "Convert the (single) input to this file; format by extension")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "Usage: %s [-o out.png] file.tga ...\n", os.Args[0])
		os.Exit(2)
	}
	if *out != "" && flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: -o needs exactly one input")
		os.Exit(2)
	}

	errors := 0
	for _, path := range flag.Args() {
		img, err := describe(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERR %v\n", err)
			errors++
			continue
		}
		if *out != "" {
			if err := imageio.Save(*out, img); err != nil {
				fmt.Fprintf(os.Stderr, "ERR %v\n", err)
				errors++
				continue
			}
			fmt.Printf("OK  %s -> %s\n", path, *out)
		}
	}
	if errors > 0 {
		fmt.Printf("\nDone with %d error(s).\n", errors)
		os.Exit(1)
	}
}
