package reporttemplate

// DefaultPageTemplate renders one page at its layout size.
const DefaultPageTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{% if page.Title %}{{ page.Title }}{% else %}{{ page.Kind }}{% endif %}</title>
<style>
html, body { margin: 0; padding: 0; }
body {
  width: {{ page.Width }}px;
  height: {{ page.Height }}px;
  overflow: hidden;
  background: {{ theme.Background }};
  color: {{ theme.Text }};
  font-family: "Helvetica Neue", Arial, sans-serif;
  font-size: 14px;
  line-height: 1.5;
}
.page { box-sizing: border-box; position: relative; width: 100%; height: 100%; padding: 64px; }
.cover-bar { position: absolute; left: 0; top: 0; width: 100%; height: 18px; background: {{ theme.CoverBar }}; }
.cover-side { position: absolute; left: 0; top: 0; width: 9px; height: 100%; background: {{ theme.CoverBar }}; }
.cover .content { padding-top: {{ page.CoverOffset }}px; }
h1 { color: {{ theme.Heading }}; font-size: 34px; text-align: center; margin: 0 0 14px; }
h2 { color: {{ theme.Heading }}; font-size: 24px; margin: 0 0 14px; }
p { margin: 0 0 14px; }
p.strong { font-weight: bold; }
p.centered, p.date { text-align: center; }
ul { margin: 0 0 14px; padding-left: 24px; }
li::marker { color: {{ theme.Heading }}; }
svg.gauge { display: block; margin: 0 auto 14px; }
</style>
</head>
<body>
<div class="page {{ page.Kind }}{% if page.Cover %} cover{% endif %}" data-page-index="{{ page.Index }}">
{% if page.Cover %}<div class="cover-bar"></div><div class="cover-side"></div>{% endif %}
<div class="content">
{% if page.Title and not page.Cover %}<h2>{{ page.Title }}</h2>{% endif %}
{% for block in page.Blocks %}
{% if block.Kind == "heading" %}{% if block.Emphasis == "title" %}<h1>{{ block.Text }}</h1>{% else %}<h2>{{ block.Text }}</h2>{% endif %}
{% elif block.Kind == "paragraph" %}<p class="{{ block.Emphasis }}">{{ block.Text }}</p>
{% elif block.Kind == "date" %}<p class="date">{{ block.Text }}</p>
{% elif block.Kind == "bullets" %}<ul>{% for item in block.Items %}<li>{{ item }}</li>{% endfor %}</ul>
{% elif block.Kind == "chart" %}<svg class="gauge" xmlns="http://www.w3.org/2000/svg" width="{{ block.Gauge.Width }}" height="{{ block.Gauge.Height }}" viewBox="0 0 {{ block.Gauge.Width }} {{ block.Gauge.Height }}">
{% for segment in block.Gauge.Segments %}<path d="{{ segment.Path }}" fill="{{ segment.Color }}"/>{% endfor %}
<path d="{{ block.Gauge.Needle }}" fill="{{ theme.Needle }}"/>
<circle cx="{{ block.Gauge.HubX }}" cy="{{ block.Gauge.HubY }}" r="{{ block.Gauge.HubR }}" fill="{{ theme.Needle }}"/>
</svg>
{% endif %}
{% endfor %}
</div>
</div>
</body>
</html>
`
