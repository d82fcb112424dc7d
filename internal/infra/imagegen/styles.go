package imagegen

import (
	"math/rand"
	"sort"
	"strings"
)

var styleEnhancements = map[string]string{
	"photorealistic":     "photorealistic, high quality, detailed, professional photography, realistic lighting",
	"abstract":           "abstract art, modern, creative, artistic, colorful, geometric shapes",
	"anime":              "anime style, manga, Japanese animation, vibrant colors, detailed, cel-shaded",
	"artistic":           "artistic painting, traditional art, brush strokes, artistic style, painterly",
	"cyberpunk":          "cyberpunk, neon lights, futuristic, dark atmosphere, high tech, dystopian",
	"fantasy":            "fantasy art, magical, mystical, enchanted, ethereal, otherworldly",
	"vintage":            "vintage style, retro, classic, aged, nostalgic, sepia tones",
	"minimalist":         "minimalist, clean, simple, modern, geometric, monochrome",
	"watercolor":         "watercolor painting, soft colors, flowing, artistic, delicate",
	"oil_painting":       "oil painting, classical art, rich colors, textured, traditional",
	"digital_art":        "digital art, modern, sleek, contemporary, high-tech",
	"sketch":             "pencil sketch, hand-drawn, artistic, monochrome, detailed linework",
	"pop_art":            "pop art, bold colors, graphic design, Andy Warhol style, vibrant",
	"surreal":            "surreal art, dreamlike, impossible, fantastical, Dali-inspired",
	"steampunk":          "steampunk, Victorian era, brass, gears, industrial, retro-futuristic",
	"gothic":             "gothic art, dark, mysterious, dramatic, ornate, Victorian",
	"impressionist":      "impressionist painting, soft brushstrokes, light effects, Monet style",
	"cartoon":            "cartoon style, animated, colorful, fun, Disney-inspired",
	"realistic_portrait": "realistic portrait, professional headshot, detailed facial features",
	"landscape":          "landscape painting, nature, scenic, outdoor, environmental",
}

// DALL-E 3 has no 4:3 size; it renders square.
var aspectSizes = map[string]string{
	"1:1":  "1024x1024",
	"16:9": "1792x1024",
	"9:16": "1024x1792",
	"4:3":  "1024x1024",
}

const defaultSize = "1024x1024"

// Styles lists the known style keys, sorted.
func Styles() []string {
	out := make([]string, 0, len(styleEnhancements))
	for k := range styleEnhancements {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func IsKnownStyle(style string) bool {
	_, ok := styleEnhancements[style]
	return ok
}

func IsKnownAspectRatio(ratio string) bool {
	_, ok := aspectSizes[ratio]
	return ok
}

// EnhancePrompt appends the style keywords and the things to avoid.
func EnhancePrompt(prompt, style, negative string) string {
	out := strings.TrimSpace(prompt)
	if enh := styleEnhancements[style]; enh != "" {
		out += ", " + enh
	}
	if neg := strings.TrimSpace(negative); neg != "" {
		out += ". Avoid: " + neg
	}
	return out
}

func SizeFor(aspectRatio string) string {
	if s, ok := aspectSizes[aspectRatio]; ok {
		return s
	}
	return defaultSize
}

// ProviderQuality maps the product quality setting to the provider's.
func ProviderQuality(q string) string {
	if q == "ultra" {
		return "hd"
	}
	return "standard"
}

var sampleImages = []string{
	"https://d64gsuwffb70l.cloudfront.net/68d523187440d1c92f1c0b02_1758798664450_707e4044.webp",
	"https://d64gsuwffb70l.cloudfront.net/68d523187440d1c92f1c0b02_1758798666349_af2b315f.webp",
	"https://d64gsuwffb70l.cloudfront.net/68d523187440d1c92f1c0b02_1758798669968_cfa053e4.png",
	"https://d64gsuwffb70l.cloudfront.net/68d523187440d1c92f1c0b02_1758798670734_a3f481a4.webp",
	"https://d64gsuwffb70l.cloudfront.net/68d523187440d1c92f1c0b02_1758798672458_e88f61af.webp",
	"https://d64gsuwffb70l.cloudfront.net/68d523187440d1c92f1c0b02_1758798674959_dc7acc81.webp",
	"https://d64gsuwffb70l.cloudfront.net/68d523187440d1c92f1c0b02_1758798676677_dc380a77.webp",
	"https://d64gsuwffb70l.cloudfront.net/68d523187440d1c92f1c0b02_1758798677373_64253ec6.webp",
	"https://d64gsuwffb70l.cloudfront.net/68d523187440d1c92f1c0b02_1758798679083_ff833edc.webp",
	"https://d64gsuwffb70l.cloudfront.net/68d523187440d1c92f1c0b02_1758798680807_fbde0029.webp",
	"https://d64gsuwffb70l.cloudfront.net/68d523187440d1c92f1c0b02_1758798681591_dc98035f.webp",
	"https://d64gsuwffb70l.cloudfront.net/68d523187440d1c92f1c0b02_1758798683320_fa3a7f3f.webp",
}

// SampleImage picks a stock image served when the provider fails.
func SampleImage() string {
	return sampleImages[rand.Intn(len(sampleImages))]
}

func IsSampleImage(url string) bool {
	for _, s := range sampleImages {
		if s == url {
			return true
		}
	}
	return false
}
