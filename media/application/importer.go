package application

import (
	"context"
	"encoding/xml"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/bep/imagemeta"
	"github.com/dfryer1193/alttext/media/domain"
	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog/log"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// sizeVariantRe matches generated derivatives such as "beach-150x150.jpg".
var sizeVariantRe = regexp.MustCompile(`^(.+)-(\d+)x(\d+)(\.[^.]+)$`)

// ImportResult summarises one ImportDir call.
type ImportResult struct {
	Imported int
	Skipped  int
	Variants int
	IDs      []int64
}

// Importer registers image files from an uploads directory as attachments.
type Importer struct {
	store domain.AttachmentRepository
}

func NewImporter(store domain.AttachmentRepository) *Importer {
	return &Importer{store: store}
}

type uploadFile struct {
	path     string
	mimeType string
}

// ImportDir walks root and creates one attachment per original image. Files named
// "<base>-<W>x<H>.<ext>" next to "<base>.<ext>" become size variants of that original.
// Files already known to the store are skipped.
func (im *Importer) ImportDir(ctx context.Context, root string) (*ImportResult, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", root, err)
	}

	images, err := scanImages(root)
	if err != nil {
		return nil, err
	}

	originals, variants := groupSizeVariants(images)

	result := &ImportResult{}
	for _, f := range originals {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		exists, err := im.store.HasFilePath(ctx, f.path)
		if err != nil {
			return result, err
		}
		if exists {
			result.Skipped++
			continue
		}

		a := &domain.Attachment{
			Title:    readEmbeddedTitle(f),
			FilePath: f.path,
			MimeType: f.mimeType,
		}

		w, h := decodeDimensions(f.path)
		a.SizeVariants = append(a.SizeVariants, domain.SizeVariant{Name: domain.FullSize, Width: w, Height: h, FilePath: f.path})
		a.SizeVariants = append(a.SizeVariants, variants[f.path]...)

		id, err := im.store.CreateAttachment(ctx, a)
		if err != nil {
			return result, fmt.Errorf("failed to import %s: %w", f.path, err)
		}

		log.Debug().Int64("attachmentID", id).Str("path", f.path).Int("sizes", len(a.SizeVariants)).Msg("Imported attachment")
		result.Imported++
		result.Variants += len(variants[f.path])
		result.IDs = append(result.IDs, id)
	}

	log.Info().
		Str("root", root).
		Int("imported", result.Imported).
		Int("skipped", result.Skipped).
		Int("variants", result.Variants).
		Msg("Import complete")

	return result, nil
}

// scanImages returns every regular file under root whose content is an image, in path order.
func scanImages(root string) ([]uploadFile, error) {
	var files []uploadFile
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}

		mtype, err := mimetype.DetectFile(path)
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Failed to detect file type")
			return nil
		}
		if !strings.HasPrefix(mtype.String(), "image/") {
			return nil
		}

		files = append(files, uploadFile{path: path, mimeType: mtype.String()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].path < files[j].path })
	return files, nil
}

// groupSizeVariants splits files into originals and the size variants keyed by original path.
func groupSizeVariants(files []uploadFile) ([]uploadFile, map[string][]domain.SizeVariant) {
	known := make(map[string]bool, len(files))
	for _, f := range files {
		known[f.path] = true
	}

	var originals []uploadFile
	variants := make(map[string][]domain.SizeVariant)
	for _, f := range files {
		m := sizeVariantRe.FindStringSubmatch(filepath.Base(f.path))
		if m == nil {
			originals = append(originals, f)
			continue
		}

		parent := filepath.Join(filepath.Dir(f.path), m[1]+m[4])
		if !known[parent] {
			originals = append(originals, f)
			continue
		}

		w, _ := strconv.Atoi(m[2])
		h, _ := strconv.Atoi(m[3])
		variants[parent] = append(variants[parent], domain.SizeVariant{
			Name:     m[2] + "x" + m[3],
			Width:    w,
			Height:   h,
			FilePath: f.path,
		})
	}

	for _, vs := range variants {
		sort.SliceStable(vs, func(i, j int) bool { return vs[i].Width*vs[i].Height < vs[j].Width*vs[j].Height })
	}

	return originals, variants
}

func decodeDimensions(path string) (int, int) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		log.Debug().Err(err).Str("path", path).Msg("Failed to decode image dimensions")
		return 0, 0
	}
	return cfg.Width, cfg.Height
}

var metaFormats = map[string]imagemeta.ImageFormat{
	"image/jpeg": imagemeta.JPEG,
	"image/png":  imagemeta.PNG,
	"image/webp": imagemeta.WebP,
	"image/tiff": imagemeta.TIFF,
}

// readEmbeddedTitle returns the first of XMP dc:title, IPTC ObjectName or EXIF ImageDescription
// found in the file. Unreadable metadata yields an empty title.
func readEmbeddedTitle(f uploadFile) string {
	format, ok := metaFormats[f.mimeType]
	if !ok {
		return ""
	}

	file, err := os.Open(f.path)
	if err != nil {
		return ""
	}
	defer file.Close()

	// A JPEG decoder hands the first APP1 segment to EXIF, so XMP gets a pass of its own.
	var xmpTitle string
	err = imagemeta.Decode(imagemeta.Options{
		R:           file,
		ImageFormat: format,
		Sources:     imagemeta.XMP,
		HandleXMP: func(r io.Reader) error {
			packet, err := io.ReadAll(r)
			if err != nil {
				return err
			}
			if xmpTitle == "" {
				xmpTitle = xmpDCTitle(packet)
			}
			return nil
		},
	})
	if err != nil {
		log.Debug().Err(err).Str("path", f.path).Msg("Failed to read XMP metadata")
	}
	if xmpTitle != "" {
		return xmpTitle
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return ""
	}

	found := make(map[imagemeta.Source]string)
	err = imagemeta.Decode(imagemeta.Options{
		R:           file,
		ImageFormat: format,
		Sources:     imagemeta.EXIF | imagemeta.IPTC,
		ShouldHandleTag: func(ti imagemeta.TagInfo) bool {
			return isTitleTag(ti)
		},
		HandleTag: func(ti imagemeta.TagInfo) error {
			if s := strings.TrimSpace(tagValueString(ti.Value)); s != "" {
				if _, ok := found[ti.Source]; !ok {
					found[ti.Source] = s
				}
			}
			return nil
		},
	})
	if err != nil {
		log.Debug().Err(err).Str("path", f.path).Msg("Failed to read embedded metadata")
	}

	for _, src := range []imagemeta.Source{imagemeta.IPTC, imagemeta.EXIF} {
		if s := found[src]; s != "" {
			return s
		}
	}
	return ""
}

type xmpLangAlt struct {
	Items []struct {
		Lang  string `xml:"http://www.w3.org/XML/1998/namespace lang,attr"`
		Value string `xml:",chardata"`
	} `xml:"Alt>li"`
}

type xmpPacket struct {
	Descriptions []struct {
		Title xmpLangAlt `xml:"http://purl.org/dc/elements/1.1/ title"`
	} `xml:"RDF>Description"`
}

// xmpDCTitle extracts dc:title from an XMP packet, preferring the x-default language entry.
func xmpDCTitle(packet []byte) string {
	var meta xmpPacket
	if err := xml.Unmarshal(packet, &meta); err != nil {
		return ""
	}

	var first string
	for _, desc := range meta.Descriptions {
		for _, item := range desc.Title.Items {
			v := strings.TrimSpace(item.Value)
			if v == "" {
				continue
			}
			if item.Lang == "x-default" {
				return v
			}
			if first == "" {
				first = v
			}
		}
	}
	return first
}

func isTitleTag(ti imagemeta.TagInfo) bool {
	switch ti.Source {
	case imagemeta.IPTC:
		return ti.Tag == "ObjectName"
	case imagemeta.EXIF:
		return ti.Tag == "ImageDescription"
	}
	return false
}

// tagValueString extracts a string from a tag value. Repeated IPTC records decode to slices.
func tagValueString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case []string:
		if len(val) > 0 {
			return val[0]
		}
	case []any:
		if len(val) > 0 {
			if s, ok := val[0].(string); ok {
				return s
			}
		}
	}
	return ""
}
