package game

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

func GenID() string {
	id, err := uuid.NewV7()
	if err != nil {
		panic("Failed to generate UUID: " + err.Error())
	}

	return id.String()
}

func mustMarshal(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		panic("Failed to marshal: " + err.Error())
	}

	return data
}

// clipText 去掉首尾空白并按字符数截断
func clipText(s string, limit int) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= limit {
		return s
	}

	return string([]rune(s)[:limit])
}

// uniqueName 在重名时追加随机数字后缀，直到房间内不再重复
func uniqueName(ctx *RoomContext, name string) string {
	name = clipText(name, MAX_NAME_LEN)
	if name == "" {
		name = "玩家"
	}

	candidate := name
	for ctx.FindPlayerByName(candidate) != nil {
		candidate = fmt.Sprintf("%s %d", name, rand.IntN(100))
	}

	return candidate
}

// pickTarget 为下标 self 的玩家随机选择另一位玩家
func pickTarget(n, self int) int {
	target := rand.IntN(n - 1)
	if target >= self {
		target++
	}

	return target
}
