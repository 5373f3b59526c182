package schedule

import (
	"reflect"
	"testing"

	"github.com/verte-zerg/tuitable/internal/model"
)

func TestParseHourPair(t *testing.T) {
	blocks := Parse("월9,10(301)")
	if len(blocks) != 1 {
		t.Fatalf("expected 1 block, got %d: %+v", len(blocks), blocks)
	}
	b := blocks[0]
	if b.Day != model.Mon {
		t.Fatalf("expected Mon, got %v", b.Day)
	}
	if !reflect.DeepEqual(b.Range, []int{1, 2}) {
		t.Fatalf("expected range [1 2], got %v", b.Range)
	}
	if b.Room != "301" {
		t.Fatalf("expected room 301, got %q", b.Room)
	}
}

func TestParseMultipleGroups(t *testing.T) {
	blocks := Parse("화13-14.5(공학관 201)<p>목13~14.5(공학관 201)")
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d: %+v", len(blocks), blocks)
	}
	want := []int{9, 10, 11}
	for i, day := range []model.Day{model.Tue, model.Thu} {
		if blocks[i].Day != day {
			t.Fatalf("block %d: expected %v, got %v", i, day, blocks[i].Day)
		}
		if !reflect.DeepEqual(blocks[i].Range, want) {
			t.Fatalf("block %d: expected %v, got %v", i, want, blocks[i].Range)
		}
		if blocks[i].Room != "공학관 201" {
			t.Fatalf("block %d: unexpected room %q", i, blocks[i].Room)
		}
	}
}

func TestParseDisjointRangesSplitIntoBlocks(t *testing.T) {
	blocks := Parse("수9-10,13-14(B1)")
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d: %+v", len(blocks), blocks)
	}
	if !reflect.DeepEqual(blocks[0].Range, []int{1, 2}) || !reflect.DeepEqual(blocks[1].Range, []int{9, 10}) {
		t.Fatalf("unexpected ranges: %v %v", blocks[0].Range, blocks[1].Range)
	}
	if blocks[0].Day != model.Wed || blocks[1].Day != model.Wed {
		t.Fatalf("expected both blocks on Wed")
	}
	if blocks[0].Room != "B1" || blocks[1].Room != "B1" {
		t.Fatalf("expected shared room, got %q %q", blocks[0].Room, blocks[1].Room)
	}
}

func TestParseAdjacentRangesMerge(t *testing.T) {
	blocks := Parse("월9-10,10-11")
	if len(blocks) != 1 {
		t.Fatalf("expected 1 merged block, got %d", len(blocks))
	}
	if !reflect.DeepEqual(blocks[0].Range, []int{1, 2, 3, 4}) {
		t.Fatalf("unexpected range %v", blocks[0].Range)
	}
}

func TestParseRoomWithDayCharacter(t *testing.T) {
	blocks := Parse("월9-10(화학관 101)")
	if len(blocks) != 1 {
		t.Fatalf("expected 1 block, got %d: %+v", len(blocks), blocks)
	}
	if blocks[0].Room != "화학관 101" {
		t.Fatalf("unexpected room %q", blocks[0].Room)
	}
}

func TestParseEveningSlots(t *testing.T) {
	blocks := Parse("금18-19.75")
	if len(blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(blocks))
	}
	if !reflect.DeepEqual(blocks[0].Range, []int{19, 20}) {
		t.Fatalf("unexpected range %v", blocks[0].Range)
	}
}

func TestParseSingleHour(t *testing.T) {
	blocks := Parse("Tue 10.5")
	if len(blocks) != 1 || blocks[0].Day != model.Tue {
		t.Fatalf("unexpected blocks %+v", blocks)
	}
	if !reflect.DeepEqual(blocks[0].Range, []int{4}) {
		t.Fatalf("unexpected range %v", blocks[0].Range)
	}
}

func TestParseSkipsMalformedGroups(t *testing.T) {
	blocks := Parse("xx<p>목abc(1)<p>금9<p>토7-8")
	if len(blocks) != 1 {
		t.Fatalf("expected only the Fri block, got %+v", blocks)
	}
	if blocks[0].Day != model.Fri || !reflect.DeepEqual(blocks[0].Range, []int{1}) {
		t.Fatalf("unexpected block %+v", blocks[0])
	}
}

func TestParseEmpty(t *testing.T) {
	if blocks := Parse(""); len(blocks) != 0 {
		t.Fatalf("expected no blocks, got %+v", blocks)
	}
}

func TestSlotLabels(t *testing.T) {
	if len(Slots) != SlotCount {
		t.Fatalf("expected %d slots, got %d", SlotCount, len(Slots))
	}
	cases := map[int]string{
		1:  "09:00~09:30",
		18: "17:30~18:00",
		19: "18:00~18:50",
		24: "22:35~23:25",
		25: "",
	}
	for idx, want := range cases {
		if got := SlotLabel(idx); got != want {
			t.Fatalf("slot %d: expected %q, got %q", idx, want, got)
		}
	}
}
