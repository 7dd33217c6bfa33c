package data

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestGenresAdd(t *testing.T) {
	var g Genres
	g = g.Add("Rock")
	g = g.Add("Jazz")
	g = g.Add("Rock")
	g = g.Add("")

	if strings.Join(g, ",") != "Rock,Jazz" {
		t.Errorf("Ожидалось Rock,Jazz, получено: %v", g)
	}
}

func TestGenresAddDoesNotShareBacking(t *testing.T) {
	base := make(Genres, 1, 4)
	base[0] = "Rock"

	a := base.Add("Jazz")
	b := base.Add("Pop")

	if a[1] != "Jazz" || b[1] != "Pop" {
		t.Errorf("Add не должен менять общий массив: %v %v", a, b)
	}
}

func TestGenresRemove(t *testing.T) {
	g := Genres{"Rock", "Jazz", "Pop"}
	removed := g.Remove("Jazz")

	if strings.Join(removed, ",") != "Rock,Pop" {
		t.Errorf("Ожидалось Rock,Pop, получено: %v", removed)
	}
	if strings.Join(g, ",") != "Rock,Jazz,Pop" {
		t.Errorf("Исходное множество не должно меняться: %v", g)
	}
}

func TestDefaultQuery(t *testing.T) {
	q := DefaultQuery(0)
	if q.Limit != DefaultLimit || q.Page != 1 || q.Sort != SortCreatedAt || q.Order != OrderDesc {
		t.Errorf("Неверные параметры по умолчанию: %+v", q)
	}
}

func TestQueryValues(t *testing.T) {
	q := DefaultQuery(20)
	q.Search = "night"
	q.Artist = "Band"

	v := q.Values()
	if v.Get("page") != "1" || v.Get("limit") != "20" {
		t.Errorf("Неверная страница: %s", v.Encode())
	}
	if v.Get("search") != "night" || v.Get("artist") != "Band" || v.Get("sort") != "createdAt" {
		t.Errorf("Неверные параметры: %s", v.Encode())
	}
	if v.Has("genre") {
		t.Errorf("Пустой жанр не передается: %s", v.Encode())
	}
}

func TestQueryPatchApply(t *testing.T) {
	q := DefaultQuery(10)
	q.Page = 4

	genre := "Jazz"
	limit := 25
	zero := 0
	patched := QueryPatch{Genre: &genre, Limit: &limit}.Apply(q)

	if patched.Genre != "Jazz" || patched.Limit != 25 {
		t.Errorf("Изменения не применены: %+v", patched)
	}
	if patched.Page != 4 || patched.Sort != SortCreatedAt {
		t.Errorf("Остальные параметры не меняются: %+v", patched)
	}
	if (QueryPatch{Limit: &zero}).Apply(q).Limit != 10 {
		t.Error("Нулевой лимит игнорируется")
	}
}

func TestTrackJSON(t *testing.T) {
	raw := `{"id":"1","title":"Song","artist":"Band","album":"","genres":["Rock"],
		"slug":"song","coverImage":"","audioFile":"","createdAt":"2024-01-01T00:00:00Z"}`

	var track Track
	if err := json.Unmarshal([]byte(raw), &track); err != nil {
		t.Fatalf("Ошибка разбора: %v", err)
	}
	if track.HasAudio() {
		t.Error("Трек без audioFile не имеет аудио")
	}
	if track.Slug != "song" || !track.Genres.Contains("Rock") {
		t.Errorf("Неверно разобран трек: %+v", track)
	}
}
