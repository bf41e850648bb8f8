package service

import (
	"errors"
	"math/rand/v2"
	"strconv"
)

// 房间号是五位数字
const (
	ROOM_CODE_MIN = 10000
	ROOM_CODE_MAX = 99999

	// 随机尝试的次数，之后按顺序查找空闲房间号
	ROOM_CODE_ATTEMPTS = 32
)

var (
	ErrNoFreeRoomCode = errors.New("没有可用的房间号")
	ErrRegistryClosed = errors.New("服务正在关闭")
)

func defaultIntn(n int) int {
	return rand.IntN(n)
}

// generateRoomCode 生成一个 taken 返回 false 的房间号
func generateRoomCode(intn func(int) int, taken func(string) bool) (string, error) {
	span := ROOM_CODE_MAX - ROOM_CODE_MIN + 1

	for range ROOM_CODE_ATTEMPTS {
		code := strconv.Itoa(ROOM_CODE_MIN + intn(span))
		if !taken(code) {
			return code, nil
		}
	}

	// 房间非常多时随机碰撞频繁，从随机位置开始顺序查找
	start := intn(span)
	for i := range span {
		code := strconv.Itoa(ROOM_CODE_MIN + (start+i)%span)
		if !taken(code) {
			return code, nil
		}
	}

	return "", ErrNoFreeRoomCode
}
