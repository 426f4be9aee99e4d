package game

import "math/rand"

// Game codes come in two wire generations. V1 codes pack four ASCII letters
// little-endian into a non-negative int32. V2 codes are six letters over a
// shuffled alphabet, packed into a negative int32 (high bit set). The client
// decides which rendering to use by sign, so V2 codes are always <= -1000.

const codeV2Alphabet = "QWXRTYLPESDFGHUJKZOCVBINMA"

// codeV2Map[c-'A'] is the position of letter c in codeV2Alphabet.
var codeV2Map = [26]int32{
	25, 21, 19, 10, 8, 11, 12, 13, 22, 15, 16, 6, 24,
	23, 18, 7, 0, 3, 9, 4, 14, 20, 1, 2, 5, 17,
}

// CodeToString renders a game code the way clients display it.
func CodeToString(code int32) string {
	if code <= -1000 {
		return codeV2ToString(code)
	}
	return string([]byte{
		byte(code),
		byte(code >> 8),
		byte(code >> 16),
		byte(code >> 24),
	})
}

// CodeFromString parses a 4-letter (V1) or 6-letter (V2) code. Returns false
// if the input is not a well-formed code.
func CodeFromString(s string) (int32, bool) {
	switch len(s) {
	case 4:
		for i := 0; i < 4; i++ {
			if s[i] < 'A' || s[i] > 'Z' {
				return 0, false
			}
		}
		return int32(s[0]) | int32(s[1])<<8 | int32(s[2])<<16 | int32(s[3])<<24, true
	case 6:
		for i := 0; i < 6; i++ {
			if s[i] < 'A' || s[i] > 'Z' {
				return 0, false
			}
		}
		return codeV2FromString(s), true
	}
	return 0, false
}

func codeV2FromString(s string) int32 {
	one := codeV2Map[s[0]-'A'] + 26*codeV2Map[s[1]-'A']
	two := codeV2Map[s[2]-'A'] + 26*(codeV2Map[s[3]-'A']+26*(codeV2Map[s[4]-'A']+26*codeV2Map[s[5]-'A']))
	return int32(uint32(one)&0x3FF | (uint32(two)<<10)&0x3FFFFC00 | 0x80000000)
}

func codeV2ToString(code int32) string {
	u := uint32(code)
	a := u & 0x3FF
	b := (u >> 10) & 0xFFFFF
	return string([]byte{
		codeV2Alphabet[a%26],
		codeV2Alphabet[a/26%26],
		codeV2Alphabet[b%26],
		codeV2Alphabet[b/26%26],
		codeV2Alphabet[b/(26*26)%26],
		codeV2Alphabet[b/(26*26*26)%26],
	})
}

// GenerateCode returns a random V2 game code.
func GenerateCode() int32 {
	var letters [6]byte
	for i := range letters {
		letters[i] = 'A' + byte(rand.Intn(26))
	}
	return codeV2FromString(string(letters[:]))
}
