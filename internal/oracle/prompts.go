package oracle

import (
	"fmt"
	"strings"

	"mediasort/internal/media"
)

const verdictRules = `Answer with a JSON object. The "verdict" field is one of "yes", "no", "maybe":
- "yes" when file names, folders, or metadata clearly show the category;
- "no" when they clearly show something else;
- "maybe" when the evidence is plausible but thin.
Always include a short "reason". Leave unknown fields empty rather than guessing.
The input is a JSON object with "files" (paths relative to the download folder)
and optional "metadata". Metadata from a provider lookup, found under "_lookup",
outweighs file names.`

var categoryPrompts = map[media.Category]string{
	media.CategoryMovie: `Decide whether the files are a feature film (a single movie, possibly with extras or subtitles).
Also return:
- "is_anim": "yes" if the film is animated;
- "title": the original release title;
- "title_in_chinese": the Chinese release title if one exists;
- "release_year": four digit year;
- "language": one of Chinese, English, Japanese, Korean, Others (the original spoken language).`,

	media.CategoryTVSeries: `Decide whether the files are episodes of a TV series (SxxEyy markers, season folders, episode numbering).
Also return:
- "is_anim": "yes" if the series is animated;
- "title": the series title;
- "title_in_chinese": the Chinese series title if one exists;
- "release_year": year the first season premiered;
- "language": one of Chinese, English, Japanese, Korean, Others.`,

	media.CategoryBangoPorn: `Decide whether the file is Japanese or Chinese adult video identified by a release code
such as SSIS-698, IPX-123, FC2-PPV-1234567, HEYZO-1234, or Madou (麻豆) studio codes (MD, MDX, MDSR ...).
Mainstream films and series are "no". Also return:
- "bango": the release code exactly as it should be filed, upper case (e.g. "SSIS-698");
- "actors": performer names credited on the release;
- "is_vr": "yes" for VR releases (VR in code or tags, prefixes like IPVR, DSVR, SIVR);
- "from_madou": "yes" for Madou studio releases;
- "from_fc2": "yes" for FC2 releases;
- "language": spoken language bucket.`,

	media.CategoryPorn: `Decide whether the file is adult video that is NOT identified by a Japanese-style release code
(western studios, OnlyFans and similar clips, amateur uploads). Also return:
- "id": the release identifier if the studio uses one;
- "name": a short descriptive name suitable as a folder name;
- "actors": performer names;
- "is_vr": "yes" for VR releases;
- "from_onlyfans": "yes" for OnlyFans content;
- "language": spoken language bucket.`,

	media.CategoryMusicVideo: `Decide whether the files are music videos or concert recordings rather than films or series.`,
	media.CategoryMusic:      `Decide whether the files are music (albums, singles, tracks, soundtracks).`,
	media.CategoryAudioBook:  `Decide whether the files are an audio book or spoken word recording (chapters, narrators) rather than music.`,
	media.CategoryBook:       `Decide whether the files are books or documents meant for reading (novels, comics, manuals, papers).`,
	media.CategoryPhotobook:  `Decide whether the files are a photo book or image gallery (a set of photographs, scans, or artwork).`,
}

func classifyPrompt(category media.Category) (string, error) {
	specific, ok := categoryPrompts[category.Base()]
	if !ok {
		return "", fmt.Errorf("no classification prompt for category %q", category)
	}
	return specific + "\n\n" + verdictRules, nil
}

func decisionPrompt() string {
	names := make([]string, 0, len(media.Categories))
	for _, c := range media.Categories {
		names = append(names, c.String())
	}
	return `You make the final category decision for a batch of downloaded files after specialised
checks produced no confident answer. The input holds the original request, the result of every
check that ran (verdict, reason, extracted fields), and per-file results for adult checks.
Weigh "maybe" answers against each other using their reasons, the file types, and the folder layout.
Prefer the most specific category. If nothing is convincing, answer "unknown" and explain why.
Respond with a JSON object {"category": <one of ` + strings.Join(names, ", ") + `>, "reason": <short explanation>}.`
}

const aliasPrompt = `You receive a JSON array of names returned by a performer search. The first entry is the
name that was searched for. Return the names that refer to that same performer (stage names,
romanizations, names in other scripts) and drop names of other people and non-name noise.
Add the Simplified and Traditional Chinese renderings of the performer's name when you know
them. Do not invent Japanese names. Always keep the first entry.
Respond with a JSON object {"aliases": [...]}.`
