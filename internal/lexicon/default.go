package lexicon

import "github.com/sultanMIB/pdf-ui/constants"

// Default returns the Arabic reference table. Each call builds a fresh value.
func Default() *Lexicon {
	return &Lexicon{
		Script: Script{Low: 0x0623, High: 0x064A},
		Labels: Labels{
			Unknown:          "غير محدد",
			PageMarker:       "--- الصفحة %d ---",
			ExtractionFailed: "فشل في استخراج النص من الملف",
			NoText:           "لم يتم استخراج أي نص",
			NoContent:        "لا يوجد محتوى لتحليله",
			AnalysisError:    "حدث خطأ في التحليل",
			ProcessingFailed: "فشل في معالجة الملف: %s",

			NoFile:     "لم يتم تقديم ملف",
			NoFilename: "لم يتم اختيار ملف",
			NotPDF:     "الملف يجب أن يكون بصيغة PDF",
			EmptyFile:  "الملف فارغ",
			TooLarge:   "حجم الملف يتجاوز الحد المسموح",
			Busy:       "الخادم مشغول، حاول مرة أخرى لاحقاً",
			Healthy:    "خادم PDF جاهز للعمل",
		},
		EntityLabels: map[constants.EntityType]string{
			constants.EntityPersonName: "أسماء",
			constants.EntityDate:       "تواريخ",
			constants.EntityPhone:      "أرقام هواتف",
			constants.EntityEmail:      "بريد إلكتروني",
			constants.EntityURL:        "عنوان ويب",
			constants.EntityNumber:     "أرقام",
		},
		DocumentLabels: map[constants.DocumentType]string{
			constants.DocumentContract: "عقد",
			constants.DocumentInvoice:  "فاتورة",
			constants.DocumentReport:   "تقرير",
			constants.DocumentGeneral:  "عام",
			constants.DocumentUnknown:  "غير معروف",
		},
		LanguageLabels: map[constants.Language]string{
			constants.LanguagePrimary:   "عربية",
			constants.LanguageSecondary: "إنجليزية",
			constants.LanguageUnknown:   "غير معروف",
		},
		Keywords: []KeywordSet{
			{Type: constants.DocumentContract, Words: []string{"عقد", "اتفاقية", "مادة", "بند"}},
			{Type: constants.DocumentInvoice, Words: []string{"فاتورة", "سعر", "كمية", "مجموع"}},
			{Type: constants.DocumentReport, Words: []string{"تقرير", "تحليل", "نتيجة"}},
		},
		Topics: []string{
			"عمل", "شركة", "مشروع", "دراسة", "تحليل", "تقرير", "عقد", "اتفاق",
			"دفع", "سعر", "تكلفة", "موعد", "تاريخ", "مبلغ", "عملية", "نظام",
		},
		Patterns: DefaultPatterns(),
	}
}

// DefaultPatterns is the ordered entity table. Digits use \p{Nd} so that
// Arabic-Indic digits match the same way ASCII digits do.
func DefaultPatterns() []Pattern {
	return []Pattern{
		{Type: constants.EntityPersonName, Expr: `{script}{3,}\s{script}{3,}`, Bounded: true},
		{Type: constants.EntityDate, Expr: `\p{Nd}{1,2}/\p{Nd}{1,2}/\p{Nd}{2,4}|\p{Nd}{4}-\p{Nd}{2}-\p{Nd}{2}`, Bounded: true},
		{Type: constants.EntityPhone, Expr: `\p{Nd}{10,15}`, Bounded: true},
		{Type: constants.EntityEmail, Expr: `[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}`, Bounded: true},
		{Type: constants.EntityURL, Expr: `https?://[^\s]+`, Bounded: false},
		{Type: constants.EntityNumber, Expr: `\p{Nd}+`, Bounded: true},
	}
}
