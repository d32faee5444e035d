package testutil

// Asset paths used by AssetFS. Global assets live under ui/, level assets
// under their level's directory.
const (
	FontImage   = "ui/font.png"
	ClickSound  = "ui/click.wav"
	TreeModel   = "forest/tree.gltf"
	BarkImage   = "forest/bark.png"
	BirdSound   = "forest/bird.wav"
	RockModel   = "cave/rock.gltf"
	DripSound   = "cave/drip.wav"
	PineModel   = "forest/pine.gltf" // buffer in PineBuffer
	PineBuffer  = "forest/pine.bin"
	AccentImage = "ui/cafe\u0301.png" // NFD: "e" followed by a combining acute
	BannerImage = "ui/banner.tga"
	CorruptPNG  = "broken/corrupt.png"
	UnknownFile = "broken/readme.txt"

	ForestLevel = "levels/forest.json"
	CaveLevel   = "levels/cave.json"
)

// PineData is the content of PineBuffer.
var PineData = []byte{0x10, 0x20, 0x30, 0x40, 0x50}
