// Package i18n provides the static label catalog used when rendering
// reports. Lookups fall back to English so a partially translated
// language never produces empty labels.
package i18n

// Supported returns true when lang has a dedicated catalog.
func Supported(lang string) bool {
	_, ok := catalogs[lang]
	return ok
}

// Languages lists the catalog language codes in a stable order.
func Languages() []string {
	return []string{"en", "es", "fr", "de", "pt", "hi", "zh", "ja"}
}

// T returns the label for key in lang. Unknown languages and untranslated
// keys fall back to English; an unknown key returns the key itself so the
// gap is visible in output rather than silent.
func T(lang, key string) string {
	if c, ok := catalogs[lang]; ok {
		if v, ok := c[key]; ok {
			return v
		}
	}
	if v, ok := catalogs["en"][key]; ok {
		return v
	}
	return key
}

// Labels returns the full resolved catalog for lang, with English filling
// any gaps. Template rendering consumes this as a single map.
func Labels(lang string) map[string]string {
	out := make(map[string]string, len(catalogs["en"]))
	for k, v := range catalogs["en"] {
		out[k] = v
	}
	if c, ok := catalogs[lang]; ok && lang != "en" {
		for k, v := range c {
			out[k] = v
		}
	}
	return out
}

var catalogs = map[string]map[string]string{
	"en": {
		"report_title":         "Data Analysis Report",
		"generated_on":         "Generated on",
		"executive_summary":    "Executive Summary",
		"metric":               "Metric",
		"value":                "Value",
		"status":               "Status",
		"total_records":        "Total Records",
		"total_features":       "Total Features",
		"data_completeness":    "Data Completeness",
		"numeric_features":     "Numeric Features",
		"categorical_features": "Categorical Features",
		"ai_analysis":          "AI-Powered Analysis",
		"key_metrics":          "Key Metrics",
		"variable":             "Variable",
		"mean":                 "Mean",
		"median":               "Median",
		"std_dev":              "Std Dev",
		"min":                  "Min",
		"max":                  "Max",
		"data_visualizations":  "Data Visualizations",
		"data_quality_report":  "Data Quality Report",
		"column":               "Column",
		"missing_count":        "Missing Count",
		"missing_percentage":   "Missing Percentage",
		"data_type":            "Data Type",
		"numeric":              "Numeric",
		"text":                 "Text",
		"footer_text":          "This report was generated automatically.",
	},
	"es": {
		"report_title":         "Informe de Análisis de Datos",
		"generated_on":         "Generado el",
		"executive_summary":    "Resumen Ejecutivo",
		"metric":               "Métrica",
		"value":                "Valor",
		"status":               "Estado",
		"total_records":        "Registros Totales",
		"total_features":       "Características Totales",
		"data_completeness":    "Completitud de Datos",
		"numeric_features":     "Características Numéricas",
		"categorical_features": "Características Categóricas",
		"ai_analysis":          "Análisis con IA",
		"key_metrics":          "Métricas Clave",
		"variable":             "Variable",
		"mean":                 "Media",
		"median":               "Mediana",
		"std_dev":              "Desv. Est.",
		"min":                  "Mín",
		"max":                  "Máx",
		"data_visualizations":  "Visualizaciones de Datos",
		"data_quality_report":  "Informe de Calidad de Datos",
		"column":               "Columna",
		"missing_count":        "Valores Faltantes",
		"missing_percentage":   "Porcentaje Faltante",
		"data_type":            "Tipo de Dato",
		"numeric":              "Numérico",
		"text":                 "Texto",
		"footer_text":          "Este informe fue generado automáticamente.",
	},
	"fr": {
		"report_title":         "Rapport d'Analyse de Données",
		"generated_on":         "Généré le",
		"executive_summary":    "Résumé Exécutif",
		"metric":               "Métrique",
		"value":                "Valeur",
		"status":               "Statut",
		"total_records":        "Enregistrements Totaux",
		"total_features":       "Caractéristiques Totales",
		"data_completeness":    "Complétude des Données",
		"numeric_features":     "Caractéristiques Numériques",
		"categorical_features": "Caractéristiques Catégorielles",
		"ai_analysis":          "Analyse par IA",
		"key_metrics":          "Métriques Clés",
		"variable":             "Variable",
		"mean":                 "Moyenne",
		"median":               "Médiane",
		"std_dev":              "Écart-Type",
		"min":                  "Min",
		"max":                  "Max",
		"data_visualizations":  "Visualisations de Données",
		"data_quality_report":  "Rapport de Qualité des Données",
		"column":               "Colonne",
		"missing_count":        "Valeurs Manquantes",
		"missing_percentage":   "Pourcentage Manquant",
		"data_type":            "Type de Donnée",
		"numeric":              "Numérique",
		"text":                 "Texte",
		"footer_text":          "Ce rapport a été généré automatiquement.",
	},
	"de": {
		"report_title":         "Datenanalysebericht",
		"generated_on":         "Erstellt am",
		"executive_summary":    "Zusammenfassung",
		"metric":               "Kennzahl",
		"value":                "Wert",
		"status":               "Status",
		"total_records":        "Datensätze Gesamt",
		"total_features":       "Merkmale Gesamt",
		"data_completeness":    "Datenvollständigkeit",
		"numeric_features":     "Numerische Merkmale",
		"categorical_features": "Kategoriale Merkmale",
		"ai_analysis":          "KI-gestützte Analyse",
		"key_metrics":          "Wichtige Kennzahlen",
		"variable":             "Variable",
		"mean":                 "Mittelwert",
		"median":               "Median",
		"std_dev":              "Standardabw.",
		"min":                  "Min",
		"max":                  "Max",
		"data_visualizations":  "Datenvisualisierungen",
		"data_quality_report":  "Datenqualitätsbericht",
		"column":               "Spalte",
		"missing_count":        "Fehlende Werte",
		"missing_percentage":   "Fehlender Anteil",
		"data_type":            "Datentyp",
		"numeric":              "Numerisch",
		"text":                 "Text",
		"footer_text":          "Dieser Bericht wurde automatisch erstellt.",
	},
	"pt": {
		"report_title":         "Relatório de Análise de Dados",
		"generated_on":         "Gerado em",
		"executive_summary":    "Resumo Executivo",
		"metric":               "Métrica",
		"value":                "Valor",
		"status":               "Status",
		"total_records":        "Registros Totais",
		"total_features":       "Características Totais",
		"data_completeness":    "Completude dos Dados",
		"numeric_features":     "Características Numéricas",
		"categorical_features": "Características Categóricas",
		"ai_analysis":          "Análise com IA",
		"key_metrics":          "Métricas Principais",
		"variable":             "Variável",
		"mean":                 "Média",
		"median":               "Mediana",
		"std_dev":              "Desvio Padrão",
		"min":                  "Mín",
		"max":                  "Máx",
		"data_visualizations":  "Visualizações de Dados",
		"data_quality_report":  "Relatório de Qualidade dos Dados",
		"column":               "Coluna",
		"missing_count":        "Valores Ausentes",
		"missing_percentage":   "Porcentagem Ausente",
		"data_type":            "Tipo de Dado",
		"numeric":              "Numérico",
		"text":                 "Texto",
		"footer_text":          "Este relatório foi gerado automaticamente.",
	},
	"hi": {
		"report_title":         "डेटा विश्लेषण रिपोर्ट",
		"generated_on":         "तैयार किया गया",
		"executive_summary":    "कार्यकारी सारांश",
		"metric":               "मीट्रिक",
		"value":                "मान",
		"status":               "स्थिति",
		"total_records":        "कुल रिकॉर्ड",
		"total_features":       "कुल विशेषताएं",
		"data_completeness":    "डेटा पूर्णता",
		"numeric_features":     "संख्यात्मक विशेषताएं",
		"categorical_features": "श्रेणीबद्ध विशेषताएं",
		"ai_analysis":          "एआई विश्लेषण",
		"key_metrics":          "मुख्य मीट्रिक",
		"variable":             "चर",
		"mean":                 "माध्य",
		"median":               "माध्यिका",
		"std_dev":              "मानक विचलन",
		"min":                  "न्यूनतम",
		"max":                  "अधिकतम",
		"data_visualizations":  "डेटा विज़ुअलाइज़ेशन",
		"data_quality_report":  "डेटा गुणवत्ता रिपोर्ट",
		"column":               "स्तंभ",
		"missing_count":        "अनुपस्थित मान",
		"missing_percentage":   "अनुपस्थित प्रतिशत",
		"data_type":            "डेटा प्रकार",
		"numeric":              "संख्यात्मक",
		"text":                 "पाठ",
		"footer_text":          "यह रिपोर्ट स्वचालित रूप से तैयार की गई है।",
	},
	"zh": {
		"report_title":         "数据分析报告",
		"generated_on":         "生成日期",
		"executive_summary":    "执行摘要",
		"metric":               "指标",
		"value":                "数值",
		"status":               "状态",
		"total_records":        "总记录数",
		"total_features":       "总特征数",
		"data_completeness":    "数据完整性",
		"numeric_features":     "数值特征",
		"categorical_features": "分类特征",
		"ai_analysis":          "AI 智能分析",
		"key_metrics":          "关键指标",
		"variable":             "变量",
		"mean":                 "均值",
		"median":               "中位数",
		"std_dev":              "标准差",
		"min":                  "最小值",
		"max":                  "最大值",
		"data_visualizations":  "数据可视化",
		"data_quality_report":  "数据质量报告",
		"column":               "列",
		"missing_count":        "缺失数量",
		"missing_percentage":   "缺失百分比",
		"data_type":            "数据类型",
		"numeric":              "数值型",
		"text":                 "文本型",
		"footer_text":          "本报告为自动生成。",
	},
	"ja": {
		"report_title":         "データ分析レポート",
		"generated_on":         "作成日",
		"executive_summary":    "エグゼクティブサマリー",
		"metric":               "指標",
		"value":                "値",
		"status":               "状態",
		"total_records":        "総レコード数",
		"total_features":       "総特徴量数",
		"data_completeness":    "データ完全性",
		"numeric_features":     "数値特徴量",
		"categorical_features": "カテゴリ特徴量",
		"ai_analysis":          "AI分析",
		"key_metrics":          "主要指標",
		"variable":             "変数",
		"mean":                 "平均",
		"median":               "中央値",
		"std_dev":              "標準偏差",
		"min":                  "最小値",
		"max":                  "最大値",
		"data_visualizations":  "データ可視化",
		"data_quality_report":  "データ品質レポート",
		"column":               "列",
		"missing_count":        "欠損数",
		"missing_percentage":   "欠損率",
		"data_type":            "データ型",
		"numeric":              "数値",
		"text":                 "テキスト",
		"footer_text":          "このレポートは自動生成されました。",
	},
}
