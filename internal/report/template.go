package report

// PageTemplate is the HTML template for the dashboard page. The same
// template renders the interactive page (forms, live refresh) and the
// standalone report (no forms, no scripts).
const PageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<style>
  :root {
    --bg: #ffffff;
    --text: #1a1a2e;
    --muted: #6b7280;
    --border: #e5e7eb;
    --accent: #2563eb;
    --green: #16a34a;
    --red: #dc2626;
    --section-bg: #f8fafc;
  }
  * { margin: 0; padding: 0; box-sizing: border-box; }
  body {
    font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
    color: var(--text);
    background: var(--bg);
    line-height: 1.6;
    max-width: 1000px;
    margin: 0 auto;
    padding: 20px;
  }
  h1 { font-size: 1.6rem; margin-bottom: 8px; color: var(--accent); }
  h2 { font-size: 1.2rem; margin: 24px 0 12px; padding-bottom: 6px; border-bottom: 2px solid var(--accent); }
  p { margin: 6px 0; }
  .muted { color: var(--muted); font-size: 0.85rem; }

  /* Banners */
  .banner { padding: 10px 14px; border-radius: 6px; margin: 12px 0; }
  .banner.error { background: #fef2f2; color: var(--red); border-left: 5px solid var(--red); }
  .banner.info { background: #eff6ff; color: var(--accent); border-left: 5px solid var(--accent); }
  .banner.notice { background: #ecfdf5; color: var(--green); border-left: 5px solid var(--green); }

  /* Forms */
  form.inline { display: flex; gap: 8px; align-items: center; flex-wrap: wrap; margin: 8px 0; }
  button, .button {
    background: var(--accent);
    color: white;
    border: 0;
    padding: 6px 14px;
    border-radius: 4px;
    cursor: pointer;
    text-decoration: none;
    font-size: 0.9rem;
  }
  .button.secondary { background: var(--muted); }

  /* Metrics */
  .metrics {
    display: grid;
    grid-template-columns: repeat(3, 1fr);
    gap: 10px;
    margin: 12px 0;
  }
  .metric {
    background: var(--section-bg);
    padding: 12px;
    border-radius: 6px;
    text-align: center;
  }
  .metric .label { font-size: 0.8rem; color: var(--muted); text-transform: uppercase; }
  .metric .value { font-size: 1.6rem; font-weight: 600; }

  /* Tables */
  table { width: 100%; border-collapse: collapse; margin: 8px 0 16px; font-size: 0.9rem; }
  th { background: var(--section-bg); text-align: left; padding: 8px; font-weight: 600; }
  td { padding: 8px; border-bottom: 1px solid var(--border); }
  td.index { color: var(--muted); width: 3em; }

  /* Chart container */
  .chart-container { margin: 12px 0; overflow-x: auto; }
  .chart-container svg { max-width: 100%; height: auto; }

  /* Footer */
  .footer {
    margin-top: 30px;
    padding-top: 12px;
    border-top: 2px solid var(--border);
    font-size: 0.8rem;
    color: var(--muted);
    text-align: center;
  }

  @media print {
    body { max-width: 100%; padding: 10px; }
    .section { page-break-inside: avoid; }
  }
</style>
</head>
<body>

<h1>{{.Title}}</h1>
{{if .GeneratedAt}}<p class="muted">Generated {{.GeneratedAt}}{{with .View.FileName}} from {{.}}{{end}}</p>{{end}}

{{with .Error}}<div class="banner error" role="alert">{{.}}</div>{{end}}
{{with .Notice}}<div class="banner notice">{{.}}</div>{{end}}

<!-- ═══════ UPLOAD ═══════ -->
{{if .Interactive}}
<div class="section" id="upload">
  <h2>📤 Upload Financial Sentiment CSV</h2>
  <form class="inline" method="post" action="/upload" enctype="multipart/form-data">
    <input type="file" name="file" accept=".csv,.xlsx" required>
    <button type="submit">Upload</button>
  </form>
  <form class="inline" method="post" action="/feed">
    <button type="submit" class="button secondary">Fetch latest headlines</button>
  </form>
  {{if not .View.Empty}}
  <form class="inline" method="post" action="/reset">
    <button type="submit" class="button secondary">Clear</button>
  </form>
  {{end}}
</div>
{{end}}

{{if .View.Empty}}
<div class="banner info">👆 Upload a CSV file to start analyzing financial sentiment.</div>
{{else}}

<!-- ═══════ PREVIEW ═══════ -->
<div class="section" id="preview">
  <h2>📄 Data Preview</h2>
  <table>
    <thead><tr>{{range .View.Preview.Columns}}<th>{{.}}</th>{{end}}</tr></thead>
    <tbody>
    {{range .View.Preview.Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
    {{end}}
    </tbody>
  </table>
</div>

<!-- ═══════ SUMMARY ═══════ -->
<div class="section" id="summary">
  <h2>📊 Dataset Summary</h2>
  <div class="metrics">
    {{range .View.Metrics}}
    <div class="metric">
      <div class="label">{{.Label}}</div>
      <div class="value">{{.Display}}</div>
    </div>
    {{end}}
  </div>
</div>

<!-- ═══════ DISTRIBUTION ═══════ -->
<div class="section" id="distribution">
  <h2>📈 Sentiment Distribution</h2>
  <div class="chart-container">{{.PieSVG}}</div>
</div>

<!-- ═══════ TREND ═══════ -->
{{if .View.HasTrend}}
<div class="section" id="trend">
  <h2>📅 Sentiment Trend Over Time</h2>
  <div class="chart-container">{{.TrendSVG}}</div>
</div>
{{end}}

<!-- ═══════ FILTER ═══════ -->
<div class="section" id="filter">
  <h2>🔍 Filter Headlines by Sentiment</h2>
  {{if .Interactive}}
  <form class="inline" method="post" action="/select" id="select-form">
    <label for="sentiment">Select Sentiment</label>
    <select name="sentiment" id="sentiment">
      {{range .View.Options}}<option value="{{.}}"{{if eq . $.View.Selected}} selected{{end}}>{{.}}</option>
      {{end}}
    </select>
    <noscript><button type="submit">Apply</button></noscript>
  </form>
  {{else if .View.Selected}}
  <p>Showing <strong>{{.View.Selected}}</strong> headlines.</p>
  {{end}}
  <table>
    <thead><tr><th></th>{{range .View.Filtered.Columns}}<th>{{.}}</th>{{end}}</tr></thead>
    <tbody>
    {{range $i, $row := .View.Filtered.Rows}}<tr><td class="index">{{inc $i}}</td>{{range $row}}<td>{{.}}</td>{{end}}</tr>
    {{end}}
    </tbody>
  </table>
</div>

<!-- ═══════ DOWNLOAD ═══════ -->
{{if and .Interactive .View.DownloadName}}
<div class="section" id="download">
  <a class="button" href="/download" download="{{.View.DownloadName}}">📥 Download Filtered Headlines as CSV</a>
  <a class="button secondary" href="/download?format=xlsx">XLSX</a>
  <a class="button secondary" href="/report">HTML report</a>
</div>
{{end}}

{{end}}

<div class="footer">{{.Footer}}</div>

{{if .Interactive}}<script src="/static/app.js"></script>{{end}}
</body>
</html>
`
