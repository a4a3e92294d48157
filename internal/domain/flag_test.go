package domain

import "testing"

func TestSplitCategoryName(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantFlag  string
		wantLabel string
	}{
		{"emoji flag", "🇺🇸 News Channel", "🇺🇸", "News Channel"},
		{"country code", "FR Cinema", "🇫🇷", "Cinema"},
		{"lowercase code with separator", "de| Sport", "🇩🇪", "Sport"},
		{"non-code token kept", "4K Movies", "4K", "Movies"},
		{"single token", "Documentaries", "Documentaries", ""},
		{"empty", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag, label := SplitCategoryName(tt.input)
			if flag != tt.wantFlag {
				t.Errorf("flag = %q, want %q", flag, tt.wantFlag)
			}
			if label != tt.wantLabel {
				t.Errorf("label = %q, want %q", label, tt.wantLabel)
			}
		})
	}
}

func TestSplitItemName(t *testing.T) {
	tests := []struct {
		input     string
		wantFlag  string
		wantLabel string
	}{
		{"US CNN International", "🇺🇸", "CNN International"},
		{"| UK BBC One HD", "🇬🇧", "BBC One HD"},
		{"| IT", "🇮🇹", ""},
		{"|", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			flag, label := SplitItemName(tt.input)
			if flag != tt.wantFlag || label != tt.wantLabel {
				t.Errorf("SplitItemName(%q) = (%q, %q), want (%q, %q)",
					tt.input, flag, label, tt.wantFlag, tt.wantLabel)
			}
		})
	}
}

func TestFlagEmojiIsStableOnEmoji(t *testing.T) {
	if got := FlagEmoji(FlagEmoji("us")); got != "🇺🇸" {
		t.Errorf("FlagEmoji twice = %q, want %q", got, "🇺🇸")
	}
}

func TestParseBucketKey(t *testing.T) {
	typ, id, ok := ParseBucketKey(BucketKey(MediaTypeSeries, "42"))
	if !ok || typ != MediaTypeSeries || id != "42" {
		t.Errorf("round trip = (%q, %q, %v)", typ, id, ok)
	}

	for _, bad := range []string{"", "movie", "movie-", "radio-7"} {
		if _, _, ok := ParseBucketKey(bad); ok {
			t.Errorf("ParseBucketKey(%q) succeeded, want failure", bad)
		}
	}
}

func TestMediaInfoHelpers(t *testing.T) {
	info := &MediaInfo{
		ReleaseDate: "2017-12-01",
		Cover:       "cover.jpg",
		Episodes: []Episode{
			{Season: 1, Episode: 1, ID: "a"},
			{Season: 2, Episode: 1, ID: "b"},
			{Season: 1, Episode: 2, ID: "c"},
		},
	}

	if got := info.ReleaseYear(); got != "2017" {
		t.Errorf("ReleaseYear() = %q, want 2017", got)
	}
	if got := info.Artwork(); got != "cover.jpg" {
		t.Errorf("Artwork() = %q, want cover fallback", got)
	}
	season1 := info.EpisodesInSeason(1)
	if len(season1) != 2 || season1[0].ID != "a" || season1[1].ID != "c" {
		t.Errorf("EpisodesInSeason(1) = %+v", season1)
	}
	if code := season1[1].Code(); code != "S01E02" {
		t.Errorf("Code() = %q, want S01E02", code)
	}
}
