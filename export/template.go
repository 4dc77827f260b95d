package export

const preamble = `<html>
<head>
<meta charset="utf-8">
<style>
body { font-family: 'Microsoft YaHei', sans-serif; }
table { border-collapse: collapse; width: 100%; margin-bottom: 30px; }
th, td { border: 1px solid #000; padding: 10px; vertical-align: top; text-align: left; }
th { background-color: #f3f4f6; font-weight: bold; }
.segment-header { background-color: #e0e7ff; padding: 10px; font-weight: bold; border: 1px solid #000; text-align: left; }
h2 { color: #333; }
.extra-row td { background-color: #f9fafb; }
.label { font-size: 10px; font-weight: bold; color: #666; text-transform: uppercase; }
.segment-note { margin: 8px 0 12px; font-size: 12px; color: #444; }
.group-cell { background: #f6f8ff; border-left: 2px solid #000; font-weight: 700; text-align: center; }
.seg-head { width: 100%; border-collapse: collapse; margin: 6px 0 8px; }
.seg-head td { vertical-align: middle; }
.seg-title { font-weight: 700; font-size: 14px; }
.seg-thumb { width: 160px; }
.seg-thumb img { display: block; max-width: 140px; max-height: 90px; object-fit: contain; border: 1px solid #000; border-radius: 4px; }
</style>
</head>
<body>
`

// 表头列固定：序号、组件名称、分项内容、类型、格式、尺寸、文件大小、说明
const tableHead = `<table>
<thead>
<tr>
<th style="width: 50px;">#</th>
<th style="width: 150px;">组件名称</th>
<th style="width: 160px;">分项/分项内容</th>
<th style="width: 120px;">类型</th>
<th style="width: 160px;">格式</th>
<th style="width: 140px;">尺寸/规格</th>
<th style="width: 120px;">文件大小</th>
<th>内容描述 / 制作说明</th>
</tr>
</thead>
<tbody>
`
