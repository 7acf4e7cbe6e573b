package export

// fontStylesheet is decorative only; nothing functional depends on it loading.
const fontStylesheet = "https://fonts.googleapis.com/css2?family=Inter:wght@400;600;800&display=swap"

// documentHTML is the html/template for the exported study sheet.
const documentHTML = `<!DOCTYPE html>
<html lang="fr">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.Title}}</title>
  <link rel="stylesheet" href="{{.FontStylesheet}}">
  <style>{{.Style}}</style>
</head>
<body class="{{if .BackgroundURL}}has-background{{else}}plain-background{{end}}"{{if .BackgroundURL}} style="background-image: url('{{.BackgroundURL}}')"{{end}}>
<main class="sheet" id="sheet">
  <header class="sheet-header" id="sheet-header">
    <div class="sheet-heading">
      <h1 class="sheet-title" id="sheet-title">{{.Title}}</h1>
      {{- if .Subtitle}}
      <p class="sheet-subtitle" id="sheet-subtitle">{{.Subtitle}}</p>
      {{- end}}
    </div>
    {{- if .LogoURL}}
    <img class="sheet-logo" id="sheet-logo" src="{{.LogoURL}}" alt="Logo">
    {{- end}}
  </header>
{{range .Panels}}
  <section class="panel{{if .Open}} is-open{{end}}" id="panel-{{.Key}}">
    <div class="panel-header">
      <h2 class="panel-title" id="title-{{.Key}}">{{.Heading}}</h2>
      <button type="button" class="panel-toggle" id="toggle-{{.Key}}" data-target="panel-{{.Key}}" aria-controls="body-{{.Key}}" aria-expanded="{{if .Open}}true{{else}}false{{end}}">
        <span class="chevron" aria-hidden="true">&#9662;</span><span class="sr-only">Afficher / masquer</span>
      </button>
    </div>
    <div class="panel-body" id="body-{{.Key}}" aria-labelledby="title-{{.Key}}">
    {{- if eq .Key "points"}}
      <ul class="points">
        {{- range $.Sheet.SummaryPoints}}
        <li>{{.}}</li>
        {{- end}}
      </ul>
    {{- else if eq .Key "concepts"}}
      <dl class="concepts">
        {{- range $.Sheet.KeyConcepts}}
        <div class="concept">
          <dt>{{.Term}}</dt>
          <dd>{{.Definition}}</dd>
        </div>
        {{- end}}
      </dl>
    {{- else if eq .Key "activity"}}
      <ol class="steps">
        {{- range $.Sheet.ActivityFlow}}
        <li>{{.}}</li>
        {{- end}}
      </ol>
    {{- else if eq .Key "quiz"}}
      <ol class="quiz" id="quiz">
        {{- range $qi, $q := $.Sheet.Quiz}}
        <li class="quiz-question" id="q-{{$qi}}">
          <p class="quiz-prompt">{{$q.Question}}</p>
          <div class="quiz-options" role="group">
            {{- range $oi, $o := $q.Options}}
            <button type="button" class="quiz-option" id="q-{{$qi}}-opt-{{$oi}}" data-question="{{$qi}}" data-option="{{$oi}}">{{$o}}</button>
            {{- end}}
          </div>
          <p class="quiz-feedback" id="q-{{$qi}}-feedback" aria-live="polite"></p>
        </li>
        {{- end}}
      </ol>
      <div class="quiz-actions">
        <button type="button" class="quiz-submit" id="quiz-submit">Valider le Quiz</button>
        <button type="button" class="quiz-reset" id="quiz-reset" hidden>Recommencer</button>
      </div>
      <p class="quiz-score" id="quiz-score" aria-live="polite"></p>
    {{- end}}
    </div>
  </section>
{{end}}
</main>
<script>
{{.QuizCore}}
var QUIZ_DATA = {{.QuizData}};
{{.Wiring}}
</script>
</body>
</html>
`

const styleCSS = `
*, *::before, *::after { box-sizing: border-box; }
body { margin: 0; padding: 2rem 1rem; font-family: "Inter", system-ui, -apple-system, "Segoe UI", sans-serif; color: #1e293b; line-height: 1.6; }
body.plain-background { background: #f1f5f9; }
body.has-background { background-size: cover; background-position: center; background-attachment: fixed; }
.sheet { max-width: 860px; margin: 0 auto; background: #ffffff; border-radius: 1rem; box-shadow: 0 10px 30px rgba(15, 23, 42, 0.12); padding: 2rem; }
body.has-background .sheet { background: rgba(255, 255, 255, 0.94); }
.sheet-header { display: flex; justify-content: space-between; align-items: flex-start; gap: 1rem; border-bottom: 3px solid #d9f99d; padding-bottom: 1rem; margin-bottom: 1.5rem; }
.sheet-title { margin: 0; font-size: 2rem; font-weight: 800; color: #365314; letter-spacing: -0.02em; }
.sheet-subtitle { margin: 0.25rem 0 0; color: #64748b; font-weight: 600; }
.sheet-logo { width: 64px; height: 64px; border-radius: 50%; object-fit: cover; flex-shrink: 0; }
.panel { border: 1px solid #e2e8f0; border-radius: 0.75rem; margin-bottom: 1rem; overflow: hidden; }
.panel-header { display: flex; justify-content: space-between; align-items: center; padding: 0.75rem 1rem; background: #f7fee7; }
.panel-title { margin: 0; font-size: 1.25rem; color: #334155; }
.panel-toggle { border: none; background: transparent; cursor: pointer; font-size: 1.25rem; color: #65a30d; padding: 0.25rem 0.5rem; }
.panel-toggle .chevron { display: inline-block; transition: transform 0.2s ease; transform: rotate(-90deg); }
.panel.is-open .panel-toggle .chevron { transform: rotate(0deg); }
.panel-body { display: none; padding: 1rem 1.25rem; }
.panel.is-open .panel-body { display: block; }
.sr-only { position: absolute; width: 1px; height: 1px; overflow: hidden; clip: rect(0 0 0 0); white-space: nowrap; }
.points li, .steps li { margin-bottom: 0.5rem; color: #475569; }
.concepts { margin: 0; }
.concept { background: #f7fee7; border: 1px solid #d9f99d; border-radius: 0.5rem; padding: 0.75rem 1rem; margin-bottom: 0.75rem; }
.concept dt { font-weight: 700; color: #1a2e05; }
.concept dd { margin: 0.25rem 0 0; color: #475569; }
.quiz { padding-left: 1.25rem; }
.quiz-question { margin-bottom: 1.25rem; }
.quiz-prompt { font-weight: 600; margin: 0 0 0.5rem; }
.quiz-options { display: flex; flex-direction: column; gap: 0.5rem; }
.quiz-option { text-align: left; padding: 0.6rem 0.9rem; border: 2px solid #cbd5e1; border-radius: 0.5rem; background: #ffffff; font: inherit; cursor: pointer; }
.quiz-option:hover:not(:disabled) { border-color: #a3e635; }
.quiz-option.selected { background: #d9f99d; border-color: #84cc16; font-weight: 700; }
.quiz-option.correct { background: #dcfce7; border-color: #16a34a; color: #14532d; font-weight: 700; }
.quiz-option.incorrect { background: #fee2e2; border-color: #dc2626; color: #7f1d1d; text-decoration: line-through; }
.quiz-option:disabled { cursor: default; }
.quiz-feedback { margin: 0.35rem 0 0; font-size: 0.9rem; min-height: 1em; }
.quiz-feedback.ok { color: #15803d; }
.quiz-feedback.ko { color: #b91c1c; }
.quiz-actions { display: flex; gap: 0.75rem; margin-top: 1rem; }
.quiz-submit, .quiz-reset { border: none; border-radius: 0.5rem; padding: 0.6rem 1.2rem; font: inherit; font-weight: 700; color: #ffffff; cursor: pointer; }
.quiz-submit { background: #c026d3; }
.quiz-reset { background: #65a30d; }
.quiz-score { font-size: 1.1rem; font-weight: 700; color: #365314; }
@media print {
  body { background: #ffffff !important; padding: 0; }
  .sheet { box-shadow: none; max-width: none; padding: 0; background: #ffffff !important; }
  .panel { border: none; overflow: visible; }
  .panel .panel-body { display: block !important; max-height: none !important; overflow: visible !important; }
  .panel-toggle, .quiz-actions, .quiz-submit, .quiz-reset { display: none !important; }
  #panel-quiz { break-before: page; page-break-before: always; }
}
`

// quizCoreJS is the framework-free quiz state machine. It never touches the DOM
// so it can be exercised on its own.
const quizCoreJS = `var FicheQuiz = (function () {
  function normalize(s) {
    return String(s === null || s === undefined ? '' : s).trim();
  }
  function correctIndex(item) {
    var want = normalize(item.answer);
    for (var j = 0; j < item.options.length; j++) {
      if (normalize(item.options[j]) === want) { return j; }
    }
    return -1;
  }
  function create(items) {
    var state = { items: items, selected: [], submitted: false, result: null };
    for (var i = 0; i < items.length; i++) { state.selected.push(-1); }
    return state;
  }
  function select(state, q, opt) {
    if (state.submitted || q < 0 || q >= state.items.length) { return false; }
    if (opt < 0 || opt >= state.items[q].options.length) { return false; }
    state.selected[q] = opt;
    return true;
  }
  function submit(state) {
    if (state.submitted) { return state.result; }
    var score = 0;
    var questions = [];
    for (var i = 0; i < state.items.length; i++) {
      var item = state.items[i];
      var sel = state.selected[i];
      var ok = sel >= 0 && normalize(item.options[sel]) === normalize(item.answer);
      if (ok) { score++; }
      questions.push({ selected: sel, correct: correctIndex(item), isCorrect: ok });
    }
    state.submitted = true;
    state.result = { score: score, total: state.items.length, questions: questions };
    return state.result;
  }
  function reset(state) {
    for (var i = 0; i < state.selected.length; i++) { state.selected[i] = -1; }
    state.submitted = false;
    state.result = null;
  }
  return { normalize: normalize, correctIndex: correctIndex, create: create, select: select, submit: submit, reset: reset };
})();`

// wiringJS binds element ids to the state machine transitions.
const wiringJS = `(function () {
  var quiz = FicheQuiz.create(QUIZ_DATA);

  function byId(id) { return document.getElementById(id); }
  function optionEl(q, o) { return byId('q-' + q + '-opt-' + o); }
  function eachOption(fn) {
    for (var q = 0; q < QUIZ_DATA.length; q++) {
      for (var o = 0; o < QUIZ_DATA[q].options.length; o++) {
        var el = optionEl(q, o);
        if (el) { fn(el, q, o); }
      }
    }
  }

  function togglePanel(button) {
    var panel = byId(button.getAttribute('data-target'));
    if (!panel) { return; }
    var open = !panel.classList.contains('is-open');
    panel.classList.toggle('is-open', open);
    button.setAttribute('aria-expanded', open ? 'true' : 'false');
  }

  function paintSelection(q) {
    for (var o = 0; o < QUIZ_DATA[q].options.length; o++) {
      var el = optionEl(q, o);
      if (el) { el.classList.toggle('selected', quiz.selected[q] === o); }
    }
  }

  function onSubmit() {
    var result = FicheQuiz.submit(quiz);
    for (var q = 0; q < result.questions.length; q++) {
      var r = result.questions[q];
      if (r.correct >= 0) { optionEl(q, r.correct).classList.add('correct'); }
      if (!r.isCorrect && r.selected >= 0) { optionEl(q, r.selected).classList.add('incorrect'); }
      var fb = byId('q-' + q + '-feedback');
      if (fb) {
        fb.textContent = r.isCorrect ? 'Bonne réponse !' : (r.selected < 0 ? 'Pas de réponse.' : 'Mauvaise réponse.');
        fb.className = 'quiz-feedback ' + (r.isCorrect ? 'ok' : 'ko');
      }
    }
    eachOption(function (el) { el.disabled = true; });
    byId('quiz-score').textContent = 'Votre score : ' + result.score + ' / ' + result.total;
    byId('quiz-submit').hidden = true;
    byId('quiz-reset').hidden = false;
  }

  function onReset() {
    FicheQuiz.reset(quiz);
    eachOption(function (el) {
      el.classList.remove('selected', 'correct', 'incorrect');
      el.disabled = false;
    });
    for (var q = 0; q < QUIZ_DATA.length; q++) {
      var fb = byId('q-' + q + '-feedback');
      if (fb) { fb.textContent = ''; fb.className = 'quiz-feedback'; }
    }
    byId('quiz-score').textContent = '';
    byId('quiz-submit').hidden = false;
    byId('quiz-reset').hidden = true;
  }

  var toggles = document.querySelectorAll('.panel-toggle[data-target]');
  for (var i = 0; i < toggles.length; i++) {
    toggles[i].addEventListener('click', function () { togglePanel(this); });
  }
  eachOption(function (el, q, o) {
    el.addEventListener('click', function () {
      if (FicheQuiz.select(quiz, q, o)) { paintSelection(q); }
    });
  });
  var submit = byId('quiz-submit');
  if (submit) { submit.addEventListener('click', onSubmit); }
  var reset = byId('quiz-reset');
  if (reset) { reset.addEventListener('click', onReset); }
})();`
