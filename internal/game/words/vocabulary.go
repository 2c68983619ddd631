package words

// defaultVocabulary 内置词库
var defaultVocabulary = []string{
	"apple", "banana", "cat", "dog", "elephant", "guitar", "house", "island",
	"jellyfish", "kite", "lighthouse", "mountain", "notebook", "octopus", "penguin",
	"pizza", "rainbow", "rocket", "snowman", "sunflower", "telescope", "umbrella",
	"volcano", "whale", "zebra", "bicycle", "castle", "dragon", "fire truck",
	"hot dog", "ice cream", "butterfly", "camera", "diamond", "giraffe",
	"hamburger", "igloo", "kangaroo", "ladder", "mermaid", "parachute", "pirate",
	"robot", "scissors", "spider", "tornado", "train", "treasure", "windmill",
	"cactus",
}

// DefaultVocabulary 返回内置词库的副本
func DefaultVocabulary() []string {
	return append([]string(nil), defaultVocabulary...)
}
