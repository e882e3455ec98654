package placephotos

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/corona10/goimagehash"
	_ "golang.org/x/image/webp"
)

// dedupeThreshold is the maximum Hamming distance between two dHash values
// below which images are considered perceptually identical.
const dedupeThreshold = 10

// duplicateFilter rejects a download that is perceptually identical to an
// image already kept this run. Providers frequently return the same generic
// photo for different venues in the same district; one copy is enough.
// The resolution loop is strictly sequential, so no locking is needed.
type duplicateFilter struct {
	hashes []*goimagehash.ImageHash
}

// remember records an image so later downloads can be compared against it.
// Undecodable bytes are ignored.
func (d *duplicateFilter) remember(data []byte) {
	if hash := hashImage(data); hash != nil {
		d.hashes = append(d.hashes, hash)
	}
}

// isDuplicate reports whether data matches a previously remembered image.
// A unique image is remembered for future comparisons. Hashing failures
// accept the image rather than block a resolution.
func (d *duplicateFilter) isDuplicate(data []byte) bool {
	hash := hashImage(data)
	if hash == nil {
		return false
	}
	for _, h := range d.hashes {
		if dist, err := hash.Distance(h); err == nil && dist < dedupeThreshold {
			return true
		}
	}
	d.hashes = append(d.hashes, hash)
	return false
}

func hashImage(data []byte) *goimagehash.ImageHash {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil
	}
	hash, err := goimagehash.DifferenceHash(img)
	if err != nil {
		return nil
	}
	return hash
}
