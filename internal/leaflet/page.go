package leaflet

import "html/template"

var pageTmpl = template.Must(template.New("page").Funcs(template.FuncMap{
	"toJSON": toJSON,
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
   <meta charset="UTF-8"/>
   <meta name="viewport" content="width=device-width, initial-scale=1"/>
   <title>{{.Title}}</title>
   <link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css" />
   <script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
   <style>
      html, body { height: 100%; margin: 0; font-family: sans-serif; }
      body { display: flex; flex-direction: column; }
      #map { flex: 1; }
      #panel { padding: 8px 12px; background: #f4f4f4; border-top: 1px solid #ccc; }
      #panel .range-slider { width: 240px; vertical-align: middle; }
      .legend-control-container { background: #fff; padding: 6px 10px; border-radius: 4px; }
      .legend-control-container h4, .legend-control-container h5 { margin: 2px 0; }
   </style>
</head>
<body>
<div id="map"></div>
<div id="panel">
{{- if .Mounted}}
   <label for="year-slider">Year: <span id="year-label">{{.Widget.Label}}</span></label>
   <input class="range-slider" id="year-slider" type="range" min="{{.Widget.Min}}" max="{{.Widget.Max}}" value="{{.Widget.Value}}" step="{{.Widget.Step}}"{{if not .Live}} disabled{{end}}>
   <button class="step" id="reverse"{{if not .Live}} disabled{{end}}>&#9664;</button>
   <button class="step" id="forward"{{if not .Live}} disabled{{end}}>&#9654;</button>
   <div style="margin-top:10px;">
      <h6>Insert values below to filter fatality data on the map:</h6>
      <label>Minimum Fatalities: <input type="number" id="min-fatal" value="{{.Widget.FilterMin}}" /></label><br>
      <label>Maximum Fatalities: <input type="number" id="max-fatal" value="{{.Widget.FilterMax}}" /></label>
   </div>
{{- end}}
</div>
<script>
(function () {
   const cfg = {{toJSON .Config}};

   const map = L.map('map').setView([cfg.view.center.lat, cfg.view.center.lon], cfg.view.zoom);
   cfg.tiles.forEach(t => L.tileLayer(t.url, { minZoom: 0, maxZoom: 22 }).addTo(map));
   cfg.attributions.forEach(a => map.attributionControl.addAttribution(a));

   const escapeHTML = s => String(s).replace(/[&<>"']/g, c => ({
      '&': '&amp;', '<': '&lt;', '>': '&gt;', '"': '&quot;', "'": '&#39;'
   }[c]));

   const popupHTML = popup => popup.lines
      .map(l => '<b>' + escapeHTML(l.label) + ':</b> ' + escapeHTML(l.value))
      .join('<br>');

   let current = null;
   const drawLayer = layer => {
      if (current) {
         map.removeLayer(current);
         current = null;
      }
      if (!layer) return;
      current = L.layerGroup(layer.markers.map(m =>
         L.circleMarker([m.point.lat, m.point.lon], m.style).bindPopup(popupHTML(m.popup))
      )).addTo(map);
   };

   cfg.controls.forEach(c => {
      const Ctl = L.Control.extend({
         options: { position: c.position },
         onAdd: function () {
            const container = L.DomUtil.create('div', 'legend-control-container');
            container.innerHTML = c.html;
            return container;
         }
      });
      map.addControl(new Ctl());
   });

   drawLayer(cfg.layer);

   const slider = document.getElementById('year-slider');
   if (!cfg.live || !slider) return;

   const yearLabel = document.getElementById('year-label');
   const minInput = document.getElementById('min-fatal');
   const maxInput = document.getElementById('max-fatal');

   let latestRequest = 0;
   const updateMapForYear = (index, step) => {
      const request = ++latestRequest;
      const params = new URLSearchParams({ index: index, min: minInput.value, max: maxInput.value });
      if (step) params.set('step', step);
      fetch(cfg.layerApi + '?' + params.toString())
         .then(r => {
            if (!r.ok) throw new Error('layer request failed: ' + r.status);
            return r.json();
         })
         .then(res => {
            if (request !== latestRequest) return;
            slider.value = res.index;
            yearLabel.textContent = res.year;
            drawLayer(res.layer);
         })
         .catch(err => console.error(err));
   };

   slider.addEventListener('input', e => updateMapForYear(parseInt(e.target.value, 10)));
   document.getElementById('forward').addEventListener('click', () => updateMapForYear(parseInt(slider.value, 10), 'forward'));
   document.getElementById('reverse').addEventListener('click', () => updateMapForYear(parseInt(slider.value, 10), 'backward'));
})();
</script>
</body>
</html>
`))
