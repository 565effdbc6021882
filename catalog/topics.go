package catalog

// defaultTopicCatalog is the built-in topic set. It can be replaced wholesale
// via TOPIC_CATALOG / TOPIC_CATALOG_FILE at startup.
var defaultTopicCatalog = []Descriptor{
	{
		ID:                "sleep",
		Name:              map[string]string{"zh": "睡眠冥想", "en": "Sleep Meditation"},
		Description:       map[string]string{"zh": "帮助放松身心、快速入眠的引导冥想", "en": "A guided practice that settles the body and mind for restful sleep"},
		RecommendedStyles: []string{"body-scan", "breathing", "visualization"},
		DefaultDuration:   15,
		TargetAudience: map[string][]string{
			"zh": {"入睡困难的人", "睡眠质量差的人", "夜间易醒的人"},
			"en": {"people who struggle to fall asleep", "light sleepers"},
		},
		Benefits: map[string][]string{
			"zh": {"缩短入睡时间", "改善睡眠质量", "缓解睡前焦虑"},
			"en": {"fall asleep faster", "deeper rest", "less bedtime anxiety"},
		},
		Keywords:    []string{"睡眠", "失眠", "入睡", "助眠", "sleep", "insomnia", "rest"},
		Techniques:  []string{"渐进式肌肉放松", "身体扫描", "4-7-8 呼吸法"},
		BestTime:    []string{"睡前 30 分钟", "躺在床上之后"},
		Progression: []string{"安顿姿势", "放慢呼吸", "逐部位放松", "淡出引导"},
	},
	{
		ID:                "stress",
		Name:              map[string]string{"zh": "压力释放", "en": "Stress Relief"},
		Description:       map[string]string{"zh": "释放累积压力、恢复内心平静的冥想练习", "en": "Release accumulated tension and return to a calm baseline"},
		RecommendedStyles: []string{"mindfulness", "breathing"},
		DefaultDuration:   10,
		TargetAudience: map[string][]string{
			"zh": {"工作压力大的上班族", "面临考试的学生"},
			"en": {"busy professionals", "students under pressure"},
		},
		Benefits: map[string][]string{
			"zh": {"降低紧张感", "恢复专注", "改善情绪"},
			"en": {"lower tension", "restored focus", "better mood"},
		},
		Keywords:   []string{"压力", "减压", "紧张", "放松", "stress", "tension", "relax"},
		Techniques: []string{"正念呼吸", "想象放松场景"},
		BestTime:   []string{"工作间隙", "下班后"},
	},
	{
		ID:                "anxiety",
		Name:              map[string]string{"zh": "缓解焦虑", "en": "Anxiety Ease"},
		Description:       map[string]string{"zh": "平复焦虑情绪、安定心神的引导练习", "en": "Ground anxious thoughts and steady the nervous system"},
		RecommendedStyles: []string{"breathing", "mindfulness"},
		DefaultDuration:   12,
		TargetAudience: map[string][]string{
			"zh": {"容易焦虑的人", "情绪波动较大的人"},
			"en": {"people prone to worry", "anyone feeling overwhelmed"},
		},
		Benefits: map[string][]string{
			"zh": {"平复情绪", "减少杂念", "增强安全感"},
			"en": {"calmer emotions", "fewer racing thoughts"},
		},
		Keywords:    []string{"焦虑", "不安", "担心", "恐慌", "anxiety", "worry", "panic"},
		Techniques:  []string{"5-4-3-2-1 感官着陆", "延长呼气"},
		Progression: []string{"承认情绪", "着陆练习", "呼吸调节", "自我安抚"},
	},
	{
		ID:                "focus",
		Name:              map[string]string{"zh": "专注力训练", "en": "Focus Training"},
		Description:       map[string]string{"zh": "训练注意力、提升专注状态的冥想", "en": "Sharpen attention and build sustained concentration"},
		RecommendedStyles: []string{"mindfulness", "breathing"},
		DefaultDuration:   10,
		TargetAudience: map[string][]string{
			"zh": {"需要长时间专注的人", "注意力易分散的人"},
			"en": {"deep-work practitioners", "easily distracted minds"},
		},
		Benefits: map[string][]string{
			"zh": {"延长专注时间", "减少走神", "提升工作效率"},
			"en": {"longer attention span", "less mind-wandering"},
		},
		Keywords: []string{"专注", "注意力", "集中", "效率", "focus", "concentration", "attention"},
		BestTime: []string{"早晨开始工作前", "重要任务之前"},
	},
	{
		ID:                "confidence",
		Name:              map[string]string{"zh": "自信培养", "en": "Confidence Building"},
		Description:       map[string]string{"zh": "建立自我认同、增强内在力量的冥想", "en": "Strengthen self-worth and inner steadiness"},
		RecommendedStyles: []string{"visualization", "mindfulness"},
		DefaultDuration:   12,
		TargetAudience: map[string][]string{
			"zh": {"面临重要场合的人", "自我怀疑的人"},
			"en": {"people preparing for big moments"},
		},
		Benefits: map[string][]string{
			"zh": {"增强自我接纳", "减少自我批评", "建立稳定自信"},
			"en": {"more self-acceptance", "quieter inner critic"},
		},
		Keywords:   []string{"自信", "勇气", "自我接纳", "confidence", "courage", "self-esteem"},
		Techniques: []string{"成功场景可视化", "肯定语句"},
	},
	{
		ID:                "gratitude",
		Name:              map[string]string{"zh": "感恩冥想", "en": "Gratitude Practice"},
		Description:       map[string]string{"zh": "觉察生活中值得感激的人与事，培养感恩之心", "en": "Notice and savor what is already good"},
		RecommendedStyles: []string{"mindfulness", "loving-kindness"},
		DefaultDuration:   8,
		TargetAudience: map[string][]string{
			"zh": {"情绪低落的人", "希望提升幸福感的人"},
			"en": {"anyone wanting a lift in mood"},
		},
		Benefits: map[string][]string{
			"zh": {"提升幸福感", "改善人际关系", "减少负面情绪"},
			"en": {"greater wellbeing", "warmer relationships"},
		},
		Keywords: []string{"感恩", "感激", "幸福", "gratitude", "thankful", "appreciation"},
		BestTime: []string{"清晨醒来后", "晚间回顾时"},
	},
	{
		ID:                "breathing",
		Name:              map[string]string{"zh": "呼吸练习", "en": "Breathing Practice"},
		Description:       map[string]string{"zh": "以呼吸为锚点的基础冥想练习", "en": "A foundational practice anchored on the breath"},
		RecommendedStyles: []string{"breathing"},
		DefaultDuration:   5,
		TargetAudience: map[string][]string{
			"zh": {"冥想初学者", "需要快速平静的人"},
			"en": {"beginners", "anyone needing a quick reset"},
		},
		Benefits: map[string][]string{
			"zh": {"快速平静", "调节自律神经", "随时可练"},
			"en": {"quick calm", "steadier nervous system"},
		},
		Keywords:   []string{"呼吸", "调息", "深呼吸", "breathing", "breath", "breathwork"},
		Techniques: []string{"腹式呼吸", "方块呼吸", "数息法"},
	},
	{
		ID:                "body_scan",
		Name:              map[string]string{"zh": "身体扫描", "en": "Body Scan"},
		Description:       map[string]string{"zh": "逐部位觉察身体感受、释放紧绷的练习", "en": "Move attention through the body and release held tension"},
		RecommendedStyles: []string{"body-scan"},
		DefaultDuration:   20,
		TargetAudience: map[string][]string{
			"zh": {"身体紧绷的人", "久坐工作者"},
			"en": {"desk workers", "anyone carrying physical tension"},
		},
		Benefits: map[string][]string{
			"zh": {"释放肌肉紧张", "提升身体觉察", "深度放松"},
			"en": {"released muscle tension", "deeper body awareness"},
		},
		Keywords:    []string{"身体扫描", "放松", "觉察", "body scan", "relaxation", "awareness"},
		Progression: []string{"从头顶开始", "逐步向下", "整体觉察", "收束"},
	},
}
