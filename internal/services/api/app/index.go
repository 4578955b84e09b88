package app

import "net/http"

const indexHTML = `<!DOCTYPE html>
<html lang="ar" dir="rtl">
<head>
<meta charset="utf-8">
<title>المستشار الزراعي</title>
</head>
<body>
<h1>المستشار الزراعي يعمل</h1>
<ul>
<li><code>POST /api/analyze_soil</code> تحليل التربة وترتيب المحاصيل</li>
<li><code>POST /api/generate_plan</code> خطة مالية وزراعية لمحصول</li>
<li><code>POST /api/analyze_historical</code> كفاءة استخدام المياه للموسم السابق</li>
</ul>
</body>
</html>
`

func handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(indexHTML))
}
