package quotes

import (
	"reflect"
	"testing"
)

func TestExtract_HeadlineScenario(t *testing.T) {
	got := Extract(`트럼프 '베네수엘라 상공 전면폐쇄' 발표`, "", 6)

	want := []Quote{{ID: 1, Text: "베네수엘라 상공 전면폐쇄", Section: SectionHeadline}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Extract = %+v, want %+v", got, want)
	}
}

func TestExtract_EmptyInput(t *testing.T) {
	if got := Extract("", "", 6); len(got) != 0 {
		t.Errorf("expected empty result, got %+v", got)
	}
}

func TestExtract_Idempotent(t *testing.T) {
	headline := `"북핵 문제 해결" 약속`
	body := `대통령은 "북핵 문제 해결"을 강조했다. 이어 "경제 협력 확대"도 언급했다.`

	first := Extract(headline, body, 6)
	second := Extract(headline, body, 6)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("not idempotent: %+v != %+v", first, second)
	}
}

func TestExtract_DedupAcrossSectionsAndStyles(t *testing.T) {
	// Same normalized text in curly marks (headline) and straight marks (body).
	got := Extract(`“경제 협력 확대” 발표`, `그는 "경제 협력 확대"라고 말했다.`, 6)

	if len(got) != 1 {
		t.Fatalf("got %d quotes %+v, want 1", len(got), got)
	}

	if got[0].Section != SectionHeadline {
		t.Errorf("section = %s, want headline", got[0].Section)
	}
}

func TestExtract_IDOrdering(t *testing.T) {
	got := Extract(`"헤드라인 인용문" 보도`, `본문에서 "본문의 인용문 하나"가 나왔다.`, 6)

	if len(got) != 2 {
		t.Fatalf("got %d quotes %+v, want 2", len(got), got)
	}

	if got[0].Section != SectionHeadline || got[1].Section != SectionBody {
		t.Fatalf("section order wrong: %+v", got)
	}

	if got[0].ID >= got[1].ID {
		t.Errorf("headline ID %d not lower than body ID %d", got[0].ID, got[1].ID)
	}
}

func TestExtract_MinLengthFilter(t *testing.T) {
	got := Extract("", `그는 "짧다"라고 했고 "충분히 긴 인용문이다"라고도 했다.`, 6)

	if len(got) != 1 {
		t.Fatalf("got %d quotes %+v, want 1", len(got), got)
	}

	if got[0].Text != "충분히 긴 인용문이다" {
		t.Errorf("text = %q", got[0].Text)
	}
}

func TestExtract_UnclosedMarkIgnored(t *testing.T) {
	got := Extract("", `시작만 있는 “인용문 그리고 끝나지 않은 문장`, 6)

	if len(got) != 0 {
		t.Errorf("expected no quotes for unclosed mark, got %+v", got)
	}
}

func TestExtract_WhitespaceNormalizedInsideQuote(t *testing.T) {
	got := Extract("", `그는 "베네수엘라   상공
전면폐쇄"라고 말했다.`, 6)

	if len(got) != 1 || got[0].Text != "베네수엘라 상공 전면폐쇄" {
		t.Errorf("got %+v", got)
	}
}
