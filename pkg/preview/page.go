package preview

const pageTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
</head>
<body>
<div id="root">%s</div>
%s
</body>
</html>
`

// clientScript keeps #root in sync with the server and forwards clicks
// and input events on annotated elements to /dispatch.
const clientScript = `<script>
(function() {
    'use strict';

    var root = document.getElementById('root');

    function connect() {
        var protocol = location.protocol === 'https:' ? 'wss:' : 'ws:';
        var ws = new WebSocket(protocol + '//' + location.host + '/ws');
        ws.onmessage = function(e) {
            var msg;
            try {
                msg = JSON.parse(e.data);
            } catch (err) {
                return;
            }
            if (msg.html !== undefined) {
                root.innerHTML = msg.html;
            }
            if (msg.type === 'error') {
                console.error('[vtree]', msg.error);
            }
        };
        ws.onclose = function() {
            setTimeout(connect, 1000);
        };
    }

    function forward(type) {
        root.addEventListener(type, function(e) {
            var el = e.target.closest('[data-vt-id]');
            if (!el) {
                return;
            }
            fetch('/dispatch/' + el.getAttribute('data-vt-id') + '/' + type, {
                method: 'POST',
                headers: {'Content-Type': 'application/json'},
                body: JSON.stringify({value: e.target.value || ''})
            });
        });
    }

    forward('click');
    forward('input');
    connect();
})();
</script>`
