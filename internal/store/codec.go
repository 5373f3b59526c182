package store

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/verte-zerg/tuitable/internal/model"
)

func encodeLectures(lectures []model.Lecture) ([]byte, error) {
	if lectures == nil {
		lectures = []model.Lecture{}
	}
	data, err := msgpack.Marshal(lectures)
	if err != nil {
		return nil, fmt.Errorf("failed to encode MessagePack: %w", err)
	}
	return data, nil
}

func decodeLectures(data []byte) ([]model.Lecture, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty MessagePack data")
	}
	var lectures []model.Lecture
	if err := msgpack.Unmarshal(data, &lectures); err != nil {
		return nil, fmt.Errorf("failed to decode MessagePack: %w", err)
	}
	return lectures, nil
}
