package imaging

import (
	"bytes"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"

	"herba-guide/pkg/apperrors"
)

// ImageSize is the model's fixed input edge length.
const ImageSize = 32

// Tensor is a normalized HxWx3 RGB image with values in [0,1].
type Tensor [][][]float32

// DecodeAndNormalize decodes a JPEG or PNG image, scales it to the model's
// input size and normalizes pixel values to [0,1].
func DecodeAndNormalize(data []byte) (Tensor, error) {
	if len(data) == 0 {
		return nil, apperrors.NewInvalidInput("empty image payload")
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, apperrors.NewInvalidInput("unsupported image format")
	}

	scaled := image.NewRGBA(image.Rect(0, 0, ImageSize, ImageSize))
	draw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), src, src.Bounds(), draw.Src, nil)

	tensor := make(Tensor, ImageSize)
	for y := 0; y < ImageSize; y++ {
		tensor[y] = make([][]float32, ImageSize)
		for x := 0; x < ImageSize; x++ {
			r, g, b, _ := scaled.At(x, y).RGBA()
			tensor[y][x] = []float32{
				float32(r>>8) / 255.0,
				float32(g>>8) / 255.0,
				float32(b>>8) / 255.0,
			}
		}
	}

	return tensor, nil
}
