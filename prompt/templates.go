package prompt

// languageTemplate holds the fixed phrasing for one output language. The
// builder only ever reads these; all fields are effectively constants.
type languageTemplate struct {
	roleFraming    string
	instruction    string // fmt: topic, style, duration
	withDesc       string // fmt: description
	constraintsHdr string
	constraints    []string
	audienceLine   string // fmt: joined audience
	benefitsLine   string // fmt: joined benefits
	formatHdr      string
	formatItems    []string
	specialHdr     string
	noSpecial      string
	techniquesLine string // fmt: joined techniques
	bestTimeLine   string // fmt: joined best times
	progressionFmt string // fmt: joined progression steps
	quick          string // fmt: topic, style, duration
	listSeparator  string
}

var languageTemplates = map[string]languageTemplate{
	"zh": {
		roleFraming:    "你是一位经验丰富的冥想引导师，擅长撰写温和、沉浸式的引导词。",
		instruction:    "请为主题「%s」撰写一段%s风格、时长约%d分钟的引导冥想文稿。",
		withDesc:       "主题说明：%s。",
		constraintsHdr: "写作要求：",
		constraints: []string{
			"语气温和、节奏舒缓，使用第二人称引导",
			"句式简短，避免说教和专业术语",
			"全文使用中文，不夹杂英文",
			"语速按每分钟约 175 字安排内容量",
		},
		audienceLine:   "面向人群：%s。",
		benefitsLine:   "希望带来的益处：%s。",
		formatHdr:      "输出格式：",
		formatItems: []string{
			"包含开场安顿、主体引导、收尾回归三个部分",
			"在需要停顿处标注 [停顿]",
			"每段不超过三句话，段落之间空行",
			"直接输出引导词正文，不要标题和编号",
		},
		specialHdr:     "特别要求：",
		noSpecial:      "无特别要求。",
		techniquesLine: "可运用的技巧：%s。",
		bestTimeLine:   "最佳练习时间：%s。",
		progressionFmt: "引导顺序：%s。",
		quick:          "请为主题「%s」写一段%s风格、约%d分钟的简短引导冥想。要求：开门见山，不要铺垫和开场白；单段输出；语气温和；在停顿处标注 [停顿]；全文中文。",
		listSeparator:  "、",
	},
	"en": {
		roleFraming:    "You are an experienced meditation guide who writes gentle, immersive scripts.",
		instruction:    "Write a guided meditation script on the theme \"%s\" in a %s style, lasting about %d minutes.",
		withDesc:       "Theme notes: %s.",
		constraintsHdr: "Writing requirements:",
		constraints: []string{
			"Warm, unhurried tone, second-person guidance",
			"Short sentences, no lecturing or jargon",
			"Write entirely in English",
			"Pace the content for roughly 130 spoken words per minute",
		},
		audienceLine:   "Intended audience: %s.",
		benefitsLine:   "Intended benefits: %s.",
		formatHdr:      "Output format:",
		formatItems: []string{
			"Structure as opening settle-in, main guidance, and gentle closing",
			"Mark pauses with [pause]",
			"Keep paragraphs to three sentences or fewer, separated by blank lines",
			"Output only the script body, no titles or numbering",
		},
		specialHdr:     "Special requirements:",
		noSpecial:      "No special requirements.",
		techniquesLine: "Techniques to draw on: %s.",
		bestTimeLine:   "Best practiced: %s.",
		progressionFmt: "Guide in this order: %s.",
		quick:          "Write a short guided meditation on \"%s\" in a %s style, about %d minutes long. Get straight into the guidance with no preamble, keep it to a single compact paragraph, keep the tone gentle, mark pauses with [pause], and write entirely in English.",
		listSeparator:  ", ",
	},
}

// topicFallbackHints supplies special-requirement heuristics for well-known
// topics when the catalog entry carries no techniques, best-time or
// progression data. Keyed by language, then by topic display name.
var topicFallbackHints = map[string]map[string]string{
	"zh": {
		"睡眠冥想":  "引导语逐渐放慢、音量意象逐渐减弱，结尾不要唤醒听众。",
		"压力释放":  "加入一次从头到肩的快速放松扫描，强调呼气时释放紧绷。",
		"缓解焦虑":  "先承认和命名情绪，再进入呼吸引导，避免使用否定句。",
		"专注力训练": "以呼吸为锚点，每次走神都温和地引导注意力回来。",
		"呼吸练习":  "明确给出吸气、屏息、呼气的节拍数。",
	},
	"en": {
		"Sleep Meditation":   "Slow the pacing steadily toward the end and do not re-alert the listener at close.",
		"Stress Relief":      "Include one quick head-to-shoulders release scan, tying release to the exhale.",
		"Anxiety Ease":       "Name the feeling first, then move into breath guidance; avoid negations.",
		"Focus Training":     "Anchor on the breath and gently return attention after each wandering.",
		"Breathing Practice": "Give explicit counts for inhale, hold and exhale.",
	},
}

// defaultStyleNames maps style ids to display wording per language.
var defaultStyleNames = map[string]map[string]string{
	"zh": {
		"mindfulness":            "正念",
		"breathing":              "呼吸引导",
		"body-scan":              "身体扫描",
		"visualization":          "想象引导",
		"loving-kindness":        "慈心",
		"progressive-relaxation": "渐进放松",
	},
	"en": {
		"mindfulness":            "mindfulness",
		"breathing":              "breath-led",
		"body-scan":              "body scan",
		"visualization":          "guided imagery",
		"loving-kindness":        "loving-kindness",
		"progressive-relaxation": "progressive relaxation",
	},
}
