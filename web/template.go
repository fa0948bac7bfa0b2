package web

import "html/template"

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Anchorage Airport CO2 Tracker</title>
<style>
body { background: #2e2e2e; color: #e0e0e0; font-family: Arial, sans-serif; margin: 2em; }
h2 { color: #4caf50; text-align: center; }
.controls { display: flex; gap: 1em; align-items: center; margin-bottom: 1em; }
.bubble { background: #3e3e3e; padding: 10px; border-radius: 5px; margin: 10px 0; }
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #1b5e20; padding: 4px 8px; text-align: left; }
input[type=range] { accent-color: #4caf50; width: 300px; }
</style>
</head>
<body>
<h2>Anchorage Airport: Sustainable Aviation Fuel (SAF) CO2 Reduction Calculator</h2>
<div class="controls">
  <label>Date <input type="date" id="date"></label>
  <label>SAF percentage <input type="range" id="saf" min="0" max="100" value="20"></label>
  <span id="safval">20%</span>
</div>
<div class="bubble" id="totals">Pick a date to load flight data.</div>
<table id="flights">
  <thead><tr>
    <th>Date &amp; Status</th><th>Flight</th><th>Airline</th>
    <th>Airport</th><th>Direction</th><th>Status</th>
    <th>Aircraft</th><th>CO2 (kg)</th>
  </tr></thead>
  <tbody></tbody>
</table>
<script>
const dateEl = document.getElementById('date');
const safEl = document.getElementById('saf');
const safVal = document.getElementById('safval');

async function refresh() {
  if (!dateEl.value) return;
  safVal.textContent = safEl.value + '%';

  const saf = await fetch('/api/saf?date=' + dateEl.value + '&pct=' + safEl.value);
  if (saf.ok) {
    const t = await saf.json();
    document.getElementById('totals').textContent =
      t.flights + ' flights, total ' + t.total_co2_metric_tons.toFixed(2) +
      ' metric tons CO2, SAF reduction ' + t.reduced_co2_metric_tons.toFixed(2) + ' metric tons';
  } else {
    document.getElementById('totals').textContent = 'No data for ' + dateEl.value;
  }

  const res = await fetch('/api/flights?date=' + dateEl.value);
  const tbody = document.querySelector('#flights tbody');
  tbody.innerHTML = '';
  if (!res.ok) return;
  for (const f of await res.json()) {
    const tr = document.createElement('tr');
    for (const v of [f.date_status, f.flight_number, f.airline, f.counterparty,
                     f.direction, f.status, f.aircraft_model,
                     f.co2_emission_kg === null ? 'Unknown' : f.co2_emission_kg]) {
      const td = document.createElement('td');
      td.textContent = v;
      tr.appendChild(td);
    }
    tbody.appendChild(tr);
  }
}

dateEl.addEventListener('change', refresh);
safEl.addEventListener('input', refresh);
</script>
</body>
</html>
`))
